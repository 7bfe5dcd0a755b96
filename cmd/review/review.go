// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package review contains the CLI for the code-review client: querying
// changes, reading messages and votes, posting reviews and abandoning
// changes on a Gerrit host.
package review

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/shellkit/internal/gerrit"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	hostFlag    = "host"
	configFlag  = "config"
	changeFlag  = "change"
	messageFlag = "message"
	labelFlag   = "label"
	emailFlag   = "email"
)

var (
	// ErrReadConfig is returned when the config file cannot be read or parsed.
	ErrReadConfig = fmt.Errorf("failed to read config file")
	// ErrBadLabel is returned when a label vote is not in NAME=VALUE form.
	ErrBadLabel = fmt.Errorf("label vote must be NAME=VALUE")
)

// fileConfig is the optional YAML configuration for the review commands.
type fileConfig struct {
	Host       string `yaml:"host"`
	CookieFile string `yaml:"cookie_file"`
}

// ReviewCmd groups the code review operations.
var ReviewCmd = &cli.Command{
	Name:        "review",
	Usage:       "shellkit review query status:open",
	Description: "Interact with changes on a Gerrit code review host.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  hostFlag,
			Usage: "Review host URL",
		},
		&cli.StringFlag{
			Name:  configFlag,
			Usage: "YAML config file with host and cookie_file",
		},
	},
	Commands: []*cli.Command{
		queryCmd,
		messagesCmd,
		votesCmd,
		postCmd,
		abandonCmd,
	},
}

var queryCmd = &cli.Command{
	Name:        "query",
	Usage:       "shellkit review query status:open owner:self",
	Description: "List changes matching the given query terms.",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		changes, err := client.Query(ctx, cmd.Args().Slice()...)
		if err != nil {
			return err
		}

		for _, ch := range changes {
			fmt.Fprintf(cmd.Writer, "%s - %s (%s)\n", ch.URL(), ch.Subject, ch.Status)
		}

		return nil
	},
}

var messagesCmd = &cli.Command{
	Name:        "messages",
	Usage:       "shellkit review messages --change ID [--email who@example.com]",
	Description: "Print the messages posted on a change.",
	Flags: []cli.Flag{
		changeIDFlag(),
		&cli.StringFlag{
			Name:  emailFlag,
			Usage: "Only show messages by this author",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		ch := client.Change(cmd.String(changeFlag))

		if email := cmd.String(emailFlag); email != "" {
			messages, err := ch.MessagesBy(ctx, email)
			if err != nil {
				return err
			}

			for _, m := range messages {
				fmt.Fprintln(cmd.Writer, m)
			}

			return nil
		}

		messages, err := ch.Messages(ctx)
		if err != nil {
			return err
		}

		for _, m := range messages {
			fmt.Fprintln(cmd.Writer, m.Message)
		}

		return nil
	},
}

var votesCmd = &cli.Command{
	Name:        "votes",
	Usage:       "shellkit review votes --change ID --label Code-Review",
	Description: "Print the votes cast on a change's label.",
	Flags: []cli.Flag{
		changeIDFlag(),
		&cli.StringFlag{
			Name:     labelFlag,
			Usage:    "Label name",
			Required: true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		votes, err := client.Change(cmd.String(changeFlag)).Votes(ctx, cmd.String(labelFlag))
		if err != nil {
			return err
		}

		for _, v := range votes {
			fmt.Fprintln(cmd.Writer, v)
		}

		return nil
	},
}

var postCmd = &cli.Command{
	Name:        "post",
	Usage:       `shellkit review post --change ID --message "LGTM" --label Code-Review=1`,
	Description: "Post a review message and set label votes on a change.",
	Flags: []cli.Flag{
		changeIDFlag(),
		&cli.StringFlag{
			Name:     messageFlag,
			Usage:    "Review message",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:  labelFlag,
			Usage: "Label vote in NAME=VALUE form, repeatable",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		labels, err := parseLabels(cmd.StringSlice(labelFlag))
		if err != nil {
			return err
		}

		return client.Change(cmd.String(changeFlag)).Review(ctx, cmd.String(messageFlag), labels)
	},
}

var abandonCmd = &cli.Command{
	Name:        "abandon",
	Usage:       `shellkit review abandon --change ID --message "obsolete"`,
	Description: "Abandon a change.",
	Flags: []cli.Flag{
		changeIDFlag(),
		&cli.StringFlag{
			Name:     messageFlag,
			Usage:    "Abandon message",
			Required: true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		return client.Change(cmd.String(changeFlag)).Abandon(ctx, cmd.String(messageFlag))
	},
}

func changeIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     changeFlag,
		Usage:    "Change ID",
		Required: true,
	}
}

// newClient builds the gerrit client from the config file and flags. Flags
// win over the file; the default host is used when neither is set.
func newClient(cmd *cli.Command) (*gerrit.Client, error) {
	cfg := fileConfig{}

	if path := cmd.String(configFlag); path != "" {
		data, err := afero.ReadFile(afero.NewOsFs(), path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
		}
	}

	host := cfg.Host
	if h := cmd.String(hostFlag); h != "" {
		host = h
	}

	opts := []gerrit.Option{}
	if cfg.CookieFile != "" {
		opts = append(opts, gerrit.WithCookieFile(cfg.CookieFile))
	}

	return gerrit.New(host, opts...), nil
}

// parseLabels converts NAME=VALUE pairs into a label vote map.
func parseLabels(pairs []string) (map[string]int, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	labels := make(map[string]int, len(pairs))

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBadLabel, pair)
		}

		vote, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadLabel, pair)
		}

		labels[name] = vote
	}

	return labels, nil
}
