package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/universalchat/hub-go/internal/config"
	apperrors "github.com/universalchat/hub-go/internal/errors"
	"github.com/universalchat/hub-go/internal/model"
	"github.com/universalchat/hub-go/internal/service"
)

func newRegisterCommand(a *app) *cobra.Command {
	var (
		sessionID string
		platform  string
		name      string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register this process as an agent session",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := service.RegisterParams{
				Platform:    platform,
				DisplayName: name,
			}
			if cmd.Flags().Changed("id") {
				params.SessionID = &sessionID
			} else if a.cfg.SessionID != "" {
				id := a.cfg.SessionID
				params.SessionID = &id
			}
			sess, err := a.hub.RegisterSession(cmd.Context(), params)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(sess)
		},
	}
	cmd.Flags().StringVar(&sessionID, "id", "", "session id to register under (default: HUB_SESSION_ID, or generated)")
	cmd.Flags().StringVar(&platform, "platform", a.cfg.Platform, "agent platform")
	cmd.Flags().StringVar(&name, "name", "", "human-readable display name")
	return cmd
}

func newSessionsCommand(a *app) *cobra.Command {
	var (
		platform string
		window   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions active within the freshness window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("window") {
				window = a.cfg.FreshnessWindow()
			}
			var (
				sessions []model.Session
				err      error
			)
			if platform != "" {
				sessions, err = a.hub.ListActiveSessionsByPlatform(cmd.Context(), platform, window)
			} else {
				sessions, err = a.hub.ListActiveSessions(cmd.Context(), window)
			}
			if err != nil {
				return reportErr(err)
			}
			return printJSON(sessions)
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "only sessions for this platform")
	cmd.Flags().DurationVar(&window, "window", 0, "freshness window (default: HUB_FRESHNESS_WINDOW_SECONDS)")
	return cmd
}

func newSendCommand(a *app) *cobra.Command {
	var (
		from   string
		thread string
	)
	cmd := &cobra.Command{
		Use:   "send <recipient> <body>",
		Short: "Send a direct message to another session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := service.SendParams{
				SenderID:    from,
				RecipientID: args[0],
				Body:        args[1],
				Kind:        model.KindChat,
			}
			if thread != "" {
				params.ThreadID = &thread
			}
			msg, err := a.hub.SendMessage(cmd.Context(), params)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(msg)
		},
	}
	cmd.Flags().StringVar(&from, "from", a.cfg.SessionID, "sending session id")
	cmd.Flags().StringVar(&thread, "thread", "", "thread id to attach the message to")
	return cmd
}

func newBroadcastCommand(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "broadcast <body>",
		Short: "Broadcast a message to every other session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.hub.BroadcastMessage(cmd.Context(), from, args[0])
			if err != nil {
				return reportErr(err)
			}
			return printJSON(msg)
		},
	}
	cmd.Flags().StringVar(&from, "from", a.cfg.SessionID, "sending session id")
	return cmd
}

func newCheckCommand(a *app) *cobra.Command {
	var (
		session string
		since   string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Read the session's mailbox without consuming it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cursor *time.Time
			if since != "" {
				t, err := time.Parse(time.RFC3339, since)
				if err != nil {
					return reportErr(apperrors.InvalidArgument("since", "must be RFC 3339"))
				}
				cursor = &t
			}
			msgs, err := a.hub.CheckMessages(cmd.Context(), session, cursor)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(msgs)
		},
	}
	cmd.Flags().StringVar(&session, "session", a.cfg.SessionID, "session whose mailbox to read")
	cmd.Flags().StringVar(&since, "since", "", "only messages created after this RFC 3339 timestamp")
	return cmd
}

func newConversationCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "conversation <session-a> <session-b>",
		Short: "Show the message history between two sessions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := a.hub.GetConversation(cmd.Context(), args[0], args[1], limit)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(msgs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum messages to return (0 = default)")
	return cmd
}

func newContextCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage shared context entries",
	}

	var session string
	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a shared context entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.hub.SetSharedContext(cmd.Context(), model.SetContextParams{
				Key:           args[0],
				Value:         args[1],
				ContributedBy: session,
			})
			if err != nil {
				return reportErr(err)
			}
			return printJSON(entry)
		},
	}
	set.Flags().StringVar(&session, "session", a.cfg.SessionID, "contributing session id")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Look up a shared context entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.hub.GetSharedContext(cmd.Context(), args[0])
			if err != nil {
				if apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
					fmt.Fprintf(os.Stderr, "no shared context entry for %q\n", args[0])
					return nil
				}
				return reportErr(err)
			}
			return printJSON(entry)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every shared context entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.hub.ListSharedContext(cmd.Context())
			if err != nil {
				return reportErr(err)
			}
			return printJSON(entries)
		},
	}

	cmd.AddCommand(set, get, list)
	return cmd
}

func newCollabCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collab",
		Short: "Manage cross-platform collaboration requests",
	}

	var from string
	request := &cobra.Command{
		Use:   "request <platform> <summary>",
		Short: "Ask agents on another platform for help",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.hub.RequestCollaboration(cmd.Context(), from, args[0], args[1])
			if err != nil {
				return reportErr(err)
			}
			return printJSON(req)
		},
	}
	request.Flags().StringVar(&from, "from", a.cfg.SessionID, "requesting session id")

	var responder string
	respond := &cobra.Command{
		Use:   "respond <request-id> <accept|decline>",
		Short: "Accept or decline a pending collaboration request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return reportErr(apperrors.InvalidArgument("request-id", "must be an integer"))
			}
			decision := model.Decision(args[1])
			if decision != model.DecisionAccept && decision != model.DecisionDecline {
				return reportErr(apperrors.InvalidArgument("decision", "must be accept or decline"))
			}
			req, err := a.hub.RespondToCollaboration(cmd.Context(), id, responder, decision)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(req)
		},
	}
	respond.Flags().StringVar(&responder, "session", a.cfg.SessionID, "responding session id")

	complete := &cobra.Command{
		Use:   "complete <request-id>",
		Short: "Mark an accepted collaboration request as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return reportErr(apperrors.InvalidArgument("request-id", "must be an integer"))
			}
			req, err := a.hub.CompleteCollaboration(cmd.Context(), id)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(req)
		},
	}

	pending := &cobra.Command{
		Use:   "pending <platform>",
		Short: "List pending collaboration requests aimed at a platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := a.hub.PendingCollaborations(cmd.Context(), args[0])
			if err != nil {
				return reportErr(err)
			}
			return printJSON(reqs)
		},
	}

	cmd.AddCommand(request, respond, complete, pending)
	return cmd
}

func newMemoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Store and search long-lived agent memory",
	}

	var session string
	remember := &cobra.Command{
		Use:   "remember <key> <content>",
		Short: "Store a memory entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.memory.Remember(cmd.Context(), args[0], args[1], session, a.cfg.Platform)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(entry)
		},
	}
	remember.Flags().StringVar(&session, "session", a.cfg.SessionID, "contributing session id")

	var (
		platform string
		limit    int
	)
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memory entries by similarity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.memory.Search(cmd.Context(), args[0], platform, limit)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(results)
		},
	}
	search.Flags().StringVar(&platform, "platform", "", "only entries contributed from this platform")
	search.Flags().IntVar(&limit, "limit", config.DefaultMemorySearchLimit, "maximum results")

	cmd.AddCommand(remember, search)
	return cmd
}

func newDocsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Index and search platform documentation",
	}

	index := &cobra.Command{
		Use:   "index <dir>",
		Short: "Index every markdown file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.docs.IndexDir(cmd.Context(), os.DirFS(args[0]), ".")
			if err != nil {
				return reportErr(err)
			}
			return printJSON(counts)
		},
	}

	var (
		platform string
		limit    int
	)
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documentation chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.docs.Search(cmd.Context(), args[0], platform, limit)
			if err != nil {
				return reportErr(err)
			}
			return printJSON(results)
		},
	}
	search.Flags().StringVar(&platform, "platform", "", "only chunks for this platform")
	search.Flags().IntVar(&limit, "limit", config.DefaultSearchLimit, "maximum results")

	cmd.AddCommand(index, search)
	return cmd
}
