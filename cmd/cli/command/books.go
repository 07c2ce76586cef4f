package command

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search the book catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxResults, _ := cmd.Flags().GetInt("max")
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		books, err := httpClient.SearchBooks(strings.Join(args, " "), maxResults)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(books) == 0 {
			fmt.Println("📚 No books found")
			return nil
		}

		fmt.Printf("📚 %d results\n", len(books))
		printLine()
		for i, b := range books {
			printBookSummary(i+1, b)
		}
		return nil
	},
}

var bookCmd = &cobra.Command{
	Use:   "book [book_id]",
	Short: "Show one book with community ratings and your activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		book, err := httpClient.GetBook(args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch book: %w", err)
		}

		color.New(color.Bold).Println(book.Title)
		if len(book.Authors) > 0 {
			fmt.Printf("by %s\n", strings.Join(book.Authors, ", "))
		}
		printLine()
		fmt.Printf("Rating:    %s\n", formatRating(book.AverageRating, book.RatingsCount))
		if book.PageCount > 0 {
			fmt.Printf("Pages:     %d\n", book.PageCount)
		}
		if book.PublishedDate != "" {
			fmt.Printf("Published: %s\n", book.PublishedDate)
		}
		if book.Status != nil {
			color.Cyan("Your shelf: %s", book.Status.Slug())
		}
		if book.UserRating != nil && *book.UserRating > 0 {
			color.Cyan("Your rating: %s", stars(*book.UserRating))
		}
		if book.Description != "" {
			fmt.Println()
			fmt.Println(book.Description)
		}
		return nil
	},
}

var shelfCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Manage your shelves",
	Long:  `Set a book's status or rating and list shelved books`,
}

var shelfSetCmd = &cobra.Command{
	Use:   "set [book_id]",
	Short: "Set status and/or rating for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.SetActivityRequest
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			req.Status = &s
		}
		if cmd.Flags().Changed("rating") {
			r, _ := cmd.Flags().GetInt("rating")
			req.Rating = &r
		}
		if req.Status == nil && req.Rating == nil {
			return fmt.Errorf("give --status and/or --rating")
		}

		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		res, err := httpClient.SetActivity(args[0], &req)
		if err != nil {
			return fmt.Errorf("failed to update shelf: %w", err)
		}
		color.Green("✓ %s", res.Message)
		return nil
	},
}

var shelfListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shelved books, yours or a friend's",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		userID, _ := cmd.Flags().GetString("user")

		httpClient, creds, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		if userID == "" {
			userID = creds.UserID
		}

		books, err := httpClient.ListShelf(userID, status)
		if err != nil {
			return fmt.Errorf("failed to list shelf: %w", err)
		}
		if len(books) == 0 {
			fmt.Println("📚 Nothing shelved yet")
			return nil
		}
		for i, b := range books {
			printBookSummary(i+1, b)
		}
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your currently reading, read and want to read shelves",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		shelves, err := httpClient.Dashboard()
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}

		for _, shelf := range shelves {
			color.New(color.Bold).Printf("%s (%d)\n", shelf.Status.Slug(), len(shelf.Books))
			printLine()
			switch shelf.Outcome {
			case "failed":
				color.Red("  could not load this shelf, try again later")
			case "empty":
				fmt.Println("  (empty)")
			}
			for i, b := range shelf.Books {
				printBookSummary(i+1, b)
			}
			fmt.Println()
		}
		return nil
	},
}

func printBookSummary(n int, b models.Book) {
	fmt.Printf("%d. %s (ID: %s)\n", n, b.Title, b.ID)
	if len(b.Authors) > 0 {
		fmt.Printf("   Author: %s\n", strings.Join(b.Authors, ", "))
	}
	fmt.Printf("   Rating: %s\n", formatRating(b.AverageRating, b.RatingsCount))
	if b.UserRating != nil && *b.UserRating > 0 {
		fmt.Printf("   Yours:  %s\n", stars(*b.UserRating))
	}
	fmt.Println()
}

func formatRating(avg float64, count int) string {
	if count == 0 {
		return "no ratings yet"
	}
	return fmt.Sprintf("%.2f (%d ratings)", avg, count)
}

func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(shelfCmd)
	rootCmd.AddCommand(dashboardCmd)

	searchCmd.Flags().Int("max", 0, "maximum number of results (server default 20, at most 40)")

	shelfCmd.AddCommand(shelfSetCmd)
	shelfCmd.AddCommand(shelfListCmd)

	shelfSetCmd.Flags().StringP("status", "s", "", "want-to-read, currently-reading or read")
	shelfSetCmd.Flags().IntP("rating", "r", 0, "rating from 0 to 5, 0 clears it")

	shelfListCmd.Flags().StringP("status", "s", "", "only list this shelf")
	shelfListCmd.Flags().StringP("user", "u", "", "list a friend's shelf instead of yours")
}
