package commands

import (
	"strings"

	"sentimentreviews/reviews-cli/internal/app/cli/form"
	"sentimentreviews/reviews-cli/internal/app/cli/view"

	"github.com/spf13/cobra"
)

func (a *App) reviewsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "List reviews with filters and sorting",
	}

	cmd.AddCommand(
		a.listCommand("mine", "Your reviews", "My Reviews", func() view.Fetcher { return a.api.ListMyReviews }),
		a.listCommand("all", "Reviews from all users", "All Reviews", func() view.Fetcher { return a.api.ListReviews }),
	)
	return cmd
}

// listCommand - экран списка: загрузить коллекцию, применить критерии, напечатать.
// fetcher берется лениво, клиент создается в PersistentPreRunE.
func (a *App) listCommand(use, short, title string, fetcher func() view.Fetcher) *cobra.Command {
	var filters criteriaFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			criteria, err := filters.criteria()
			if err != nil {
				return err
			}

			list := view.NewReviewList(fetcher())
			list.SetCriteria(criteria)
			if err := list.Refresh(cmd.Context()); err != nil {
				return a.apiError(err)
			}

			printer(cmd).ReviewList(title, list.Snapshot())
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}

func (a *App) dashboardCommand() *cobra.Command {
	var fromServer bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Sentiment statistics and recent reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			p := printer(cmd)

			if fromServer {
				stats, err := a.api.SentimentStats(cmd.Context())
				if err != nil {
					return a.apiError(err)
				}
				p.Stats(stats.Aggregates)
				p.Messagef("\nsource: %s, generated %s", stats.Source, stats.GeneratedAt.Local().Format("Jan 2, 2006 15:04"))
				return nil
			}

			reviews, err := a.api.ListReviews(cmd.Context())
			if err != nil {
				return a.apiError(err)
			}
			p.Dashboard(view.BuildDashboard(reviews))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromServer, "server", false, "Show statistics computed by the review service")
	return cmd
}

func (a *App) createCommand() *cobra.Command {
	var f form.ReviewForm

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a review; sentiment is detected by the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return err
			}

			review, err := a.api.CreateReview(cmd.Context(), f.Input())
			if err != nil {
				return a.apiError(err)
			}

			p := printer(cmd)
			p.Messagef("Review submitted successfully!\n")
			p.Review(*review)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.ProductName, "product", "", "Product name")
	cmd.Flags().StringVar(&f.ReviewText, "text", "", "Review text (10-500 characters)")
	cmd.Flags().IntVar(&f.Rating, "rating", 0, "Rating 1..5")
	return cmd
}

func (a *App) editCommand() *cobra.Command {
	var f form.EditForm

	cmd := &cobra.Command{
		Use:   "edit <review-id>",
		Short: "Update your review; text changes are re-analyzed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return err
			}

			review, err := a.api.UpdateReview(cmd.Context(), args[0], f.Input())
			if err != nil {
				return a.apiError(err)
			}

			p := printer(cmd)
			p.Messagef("Review updated\n")
			p.Review(*review)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.ProductName, "product", "", "New product name")
	cmd.Flags().StringVar(&f.ReviewText, "text", "", "New review text (10-500 characters)")
	cmd.Flags().IntVar(&f.Rating, "rating", 0, "New rating 1..5")
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			p := printer(cmd)
			if !yes {
				answer, err := newPrompter(cmd).ask("Are you sure you want to delete this review? [y/N]")
				if err != nil {
					return err
				}
				if answer = strings.ToLower(strings.TrimSpace(answer)); answer != "y" && answer != "yes" {
					p.Messagef("Cancelled")
					return nil
				}
			}

			if err := a.api.DeleteReview(cmd.Context(), args[0]); err != nil {
				return a.apiError(err)
			}
			p.Messagef("Review deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
