package command

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show what you and your friends are reading",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		feed, err := httpClient.Feed()
		if err != nil {
			return fmt.Errorf("failed to load feed: %w", err)
		}
		if len(feed) == 0 {
			fmt.Println("📰 Nothing here yet, add some friends!")
			return nil
		}

		for _, entry := range feed {
			name := entry.UserName
			if name == "" {
				name = entry.UserID
			}
			color.New(color.Bold).Println(name)
			for _, b := range entry.Books {
				when := ""
				if b.UpdatedAt != nil {
					when = b.UpdatedAt.Format("2006-01-02")
				}
				fmt.Printf("  %s %s  %s\n", b.ActivityText, color.CyanString(b.Title), color.HiBlackString(when))
			}
			fmt.Println()
		}
		return nil
	},
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "Manage friends and friend requests",
}

var friendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your friends",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, _ := cmd.Flags().GetString("search")
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		friends, err := httpClient.ListFriends(q)
		if err != nil {
			return fmt.Errorf("failed to list friends: %w", err)
		}
		if len(friends) == 0 {
			fmt.Println("👥 No friends found")
			return nil
		}
		for _, f := range friends {
			fmt.Printf("• %s (@%s, ID: %s)\n", f.Name, f.Username, f.ID)
		}
		return nil
	},
}

var friendsRequestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List pending friend requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		sent, _ := cmd.Flags().GetBool("sent")
		role := models.RoleReceiver
		if sent {
			role = models.RoleSender
		}

		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		requests, err := httpClient.ListRequests(string(role))
		if err != nil {
			return fmt.Errorf("failed to list requests: %w", err)
		}
		if len(requests) == 0 {
			fmt.Println("📭 No pending requests")
			return nil
		}
		for _, r := range requests {
			fmt.Printf("• %s (@%s)  request %s  %s\n", r.User.Name, r.User.Username, r.ID, r.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var friendsAddCmd = &cobra.Command{
	Use:   "add [user_id]",
	Short: "Send a friend request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		_, accepted, err := httpClient.SendFriendRequest(args[0])
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		if accepted {
			color.Green("✓ %s had already asked, you are now friends", args[0])
			return nil
		}
		color.Green("✓ Friend request sent to %s", args[0])
		return nil
	},
}

func respondCmd(use, short string, status models.FriendStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [request_id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			httpClient, _, err := GetAuthenticatedClient()
			if err != nil {
				return err
			}
			if _, err := httpClient.RespondFriendRequest(args[0], string(status)); err != nil {
				return fmt.Errorf("failed to %s request: %w", use, err)
			}
			color.Green("✓ Request %s", status)
			return nil
		},
	}
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create or edit your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.UpsertProfileRequest
		req.Name, _ = cmd.Flags().GetString("name")
		req.Username, _ = cmd.Flags().GetString("username")
		req.Email, _ = cmd.Flags().GetString("email")
		req.ProfilePic, _ = cmd.Flags().GetString("picture")
		req.Country, _ = cmd.Flags().GetString("country")

		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		user, err := httpClient.UpsertProfile(&req)
		if err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		color.Green("✓ Profile saved for @%s", user.Username)
		return nil
	},
}

var goalCmd = &cobra.Command{
	Use:   "goal [books]",
	Short: "Set your yearly reading goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid goal: %w", err)
		}
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		if err := httpClient.SetReadingGoal(goal); err != nil {
			return fmt.Errorf("failed to set goal: %w", err)
		}
		color.Green("✓ Reading goal set to %d books", goal)
		return nil
	},
}

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Show reading challenge progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		httpClient, creds, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		if userID == "" {
			userID = creds.UserID
		}

		ch, err := httpClient.Challenge(userID)
		if err != nil {
			return fmt.Errorf("failed to load challenge: %w", err)
		}
		if ch.Goal == 0 {
			fmt.Printf("%d books read, no goal set\n", ch.ReadCount)
			return nil
		}
		fmt.Printf("%d of %d books read (%d%%)\n", ch.ReadCount, ch.Goal, ch.Percent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(challengeCmd)

	friendsCmd.AddCommand(friendsListCmd)
	friendsCmd.AddCommand(friendsRequestsCmd)
	friendsCmd.AddCommand(friendsAddCmd)
	friendsCmd.AddCommand(respondCmd("accept", "Accept a friend request", models.FriendAccepted))
	friendsCmd.AddCommand(respondCmd("decline", "Decline a friend request", models.FriendDeclined))

	friendsListCmd.Flags().StringP("search", "q", "", "filter by name or username")
	friendsRequestsCmd.Flags().Bool("sent", false, "list requests you sent instead of received")

	profileCmd.Flags().StringP("name", "n", "", "display name")
	profileCmd.Flags().StringP("username", "u", "", "unique username")
	profileCmd.Flags().StringP("email", "e", "", "email address")
	profileCmd.Flags().String("picture", "", "profile picture URL")
	profileCmd.Flags().String("country", "", "country")
	profileCmd.MarkFlagRequired("name")
	profileCmd.MarkFlagRequired("username")

	challengeCmd.Flags().StringP("user", "u", "", "show a friend's challenge instead of yours")
}
