// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gerrit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Change is one review on the host. Detail and messages are fetched lazily
// and cached on the value.
//
// https://gerrit-review.googlesource.com/Documentation/rest-api-changes.html#change-info
type Change struct {
	ID      string `json:"id"`
	Number  int    `json:"_number"`
	Subject string `json:"subject"`
	Status  string `json:"status"`

	client   *Client
	detail   *ChangeDetail
	messages []Message
}

// ChangeDetail carries the labeled votes of a change.
type ChangeDetail struct {
	Labels map[string]LabelInfo `json:"labels"`
}

// LabelInfo lists every vote on one label.
type LabelInfo struct {
	All []ApprovalInfo `json:"all"`
}

// ApprovalInfo is a single vote.
type ApprovalInfo struct {
	Value int `json:"value"`
}

// Message is one review message.
type Message struct {
	Message string      `json:"message"`
	Author  AccountInfo `json:"author"`
}

// AccountInfo identifies the author of a message.
type AccountInfo struct {
	Email string `json:"email"`
}

// reviewInput is the payload for posting a review.
type reviewInput struct {
	Message string         `json:"message"`
	Labels  map[string]int `json:"labels,omitempty"`
}

// abandonInput is the payload for abandoning a change.
type abandonInput struct {
	Message string `json:"message"`
}

// Change returns a handle on the change with the given ID without querying
// the host.
func (c *Client) Change(id string) *Change {
	return &Change{ID: id, client: c}
}

// Query returns the changes matching the provided queries.
func (c *Client) Query(ctx context.Context, queries ...string) ([]*Change, error) {
	body, err := c.get(ctx, "changes/?q="+strings.Join(queries, "+"))
	if err != nil {
		return nil, err
	}

	var changes []*Change
	if err := json.Unmarshal(body, &changes); err != nil {
		return nil, err
	}

	for _, ch := range changes {
		ch.client = c
	}

	return changes, nil
}

// Detail fetches the change detail, caching it on the first call.
func (ch *Change) Detail(ctx context.Context) (*ChangeDetail, error) {
	if ch.detail != nil {
		return ch.detail, nil
	}

	body, err := ch.client.get(ctx, fmt.Sprintf("changes/%s/detail", ch.ID))
	if err != nil {
		return nil, err
	}

	detail := &ChangeDetail{}
	if err := json.Unmarshal(body, detail); err != nil {
		return nil, err
	}

	ch.detail = detail

	return detail, nil
}

// Messages fetches every message on the change, caching them on the first
// call.
func (ch *Change) Messages(ctx context.Context) ([]Message, error) {
	if ch.messages != nil {
		return ch.messages, nil
	}

	body, err := ch.client.get(ctx, fmt.Sprintf("changes/%s/messages", ch.ID))
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, err
	}

	ch.messages = messages

	return messages, nil
}

// Votes returns every vote cast on the given label.
func (ch *Change) Votes(ctx context.Context, label string) ([]int, error) {
	detail, err := ch.Detail(ctx)
	if err != nil {
		return nil, err
	}

	info := detail.Labels[label]
	votes := make([]int, 0, len(info.All))

	for _, approval := range info.All {
		votes = append(votes, approval.Value)
	}

	return votes, nil
}

// MessagesBy returns the text of every message posted by the user with the
// given email.
func (ch *Change) MessagesBy(ctx context.Context, email string) ([]string, error) {
	messages, err := ch.Messages(ctx)
	if err != nil {
		return nil, err
	}

	var out []string

	for _, m := range messages {
		if m.Author.Email == email {
			out = append(out, m.Message)
		}
	}

	return out, nil
}

// Review posts a review message and sets the given label votes on the
// current revision.
func (ch *Change) Review(ctx context.Context, message string, labels map[string]int) error {
	path := fmt.Sprintf("changes/%s/revisions/current/review", ch.ID)

	_, err := ch.client.post(ctx, path, reviewInput{Message: message, Labels: labels})

	return err
}

// Abandon abandons the change with the given message.
func (ch *Change) Abandon(ctx context.Context, message string) error {
	_, err := ch.client.post(ctx, fmt.Sprintf("changes/%s/abandon", ch.ID), abandonInput{Message: message})

	return err
}

// URL returns the web address of the change on the review host.
func (ch *Change) URL() string {
	return fmt.Sprintf("%s/c/%d", ch.client.host, ch.Number)
}

// String implements fmt.Stringer for log and error messages.
func (ch *Change) String() string {
	return ch.URL()
}
