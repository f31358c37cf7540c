package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/config"
)

func publishCmd() *cobra.Command {
	var (
		serverURL string
		token     string
		title     string
		message   string
		category  string
		priority  string
		actionURL string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a notification to the broker",
		Long:  "Creates a notification via the broker's REST API so connected clients see it live.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if title == "" {
				return fmt.Errorf("--title is required")
			}

			var source oauth2.TokenSource
			if token != "" {
				source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			}

			client := kestrel.New(serverURL, source)

			created, err := client.Notifications.Create(ctx, &kestrel.Notification{
				Title:     title,
				Message:   message,
				Category:  kestrel.Category(category),
				Priority:  kestrel.Priority(priority),
				ActionURL: actionURL,
			})
			if err != nil {
				return fmt.Errorf("failed to publish: %w", err)
			}

			fmt.Printf("Published %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", config.DefaultServerURL, "broker base URL")
	cmd.Flags().StringVar(&token, "token", "", "broker access token")
	cmd.Flags().StringVar(&title, "title", "", "notification title")
	cmd.Flags().StringVar(&message, "message", "", "notification body")
	cmd.Flags().StringVar(&category, "category", string(kestrel.CategorySystem), "billing, team, system, or account")
	cmd.Flags().StringVar(&priority, "priority", string(kestrel.PriorityNormal), "low, normal, high, or urgent")
	cmd.Flags().StringVar(&actionURL, "url", "", "optional action link")

	return cmd
}
