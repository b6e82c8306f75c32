package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/content"
	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/infra/memory"
	"github.com/spf13/cobra"
)

type playOptions struct {
	quizID string
	date   string
	player string
}

// NewPlayCmd runs a quiz in the terminal and records the result.
func NewPlayCmd(configPath *string) *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play today's quiz (or another one) in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()
			rt.quiet()

			catalog, err := rt.catalog("")
			if err != nil {
				return err
			}
			quiz, err := pickQuiz(ctx, catalog, opts, time.Now())
			if err != nil {
				return err
			}
			storage, err := rt.streakStorage(ctx)
			if err != nil {
				return err
			}
			service := rt.service(memory.NewAttemptStore(), memory.NewQuizRepository(catalog, time.Hour), storage)
			return play(ctx, service, quiz, opts.player, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.quizID, "quiz", "", "quiz id to play")
	cmd.Flags().StringVar(&opts.date, "date", "", "play the quiz of this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.player, "player", os.Getenv("QUIZ_PLAYER"), "player id the streak is recorded for")
	return cmd
}

func pickQuiz(ctx context.Context, catalog *content.Catalog, opts playOptions, now time.Time) (domain.Quiz, error) {
	switch {
	case opts.quizID != "":
		return catalog.LoadQuiz(ctx, opts.quizID)
	case opts.date != "":
		if quiz, ok := catalog.ByDate(opts.date); ok {
			return quiz, nil
		}
		return domain.Quiz{}, fmt.Errorf("no quiz for %s: %w", opts.date, domain.ErrQuizNotFound)
	default:
		if quiz, ok := catalog.Today(now); ok {
			return quiz, nil
		}
		return domain.Quiz{}, fmt.Errorf("no quiz for today (%s): %w", now.Format(time.DateOnly), domain.ErrQuizNotFound)
	}
}

func play(ctx context.Context, service *app.QuizService, quiz domain.Quiz, player string, in io.Reader, out io.Writer) error {
	before := service.Tracker(ctx, player)
	if previous, ok := before.Result(quiz.Meta.ID); ok {
		fmt.Fprintf(out, "You already played this quiz (%d/%d). Playing again only updates your result.\n",
			previous.Score, previous.TotalPoints)
	}
	unlockedBefore := map[domain.BadgeType]bool{}
	for _, b := range before.UnlockedBadges() {
		unlockedBefore[b.ID] = true
	}

	attempt, err := service.Start(ctx, quiz.Meta.ID, player)
	if err != nil {
		return err
	}
	defer service.Leave(ctx, player, attempt.ID())

	fmt.Fprintf(out, "%s (%s, %s) - %d questions, %d points\n",
		quiz.Meta.Topic, quiz.Meta.Category, quiz.Meta.Difficulty, attempt.TotalQuestions(), attempt.MaxScore())

	scanner := bufio.NewScanner(in)
	for {
		q := attempt.CurrentQuestion()
		fmt.Fprintf(out, "\nQuestion %d/%d (%d pts): %s\n", attempt.CurrentQuestionNumber(), attempt.TotalQuestions(), q.Points, q.Text)
		for i, o := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, o.Text)
		}

		choice, err := readChoice(scanner, out, len(q.Options))
		if err != nil {
			return err
		}
		answer, err := service.SubmitAnswer(ctx, player, choice)
		if err != nil {
			return err
		}
		if answer.Correct {
			fmt.Fprintf(out, "Correct! +%d\n", answer.Points)
		} else {
			fmt.Fprintf(out, "Wrong. The answer was: %s\n", correctText(q))
		}
		if q.Explanation != "" {
			fmt.Fprintln(out, q.Explanation)
		}

		more, err := service.Next(ctx, player)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	result, stats, err := service.Finish(ctx, player)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nScore: %d/%d in %ds\n", result.Score, result.TotalPoints, result.TimeSeconds)
	fmt.Fprintf(out, "Streak: %d (longest %d), %d quizzes completed\n", stats.CurrentStreak, stats.LongestStreak, stats.TotalCompleted)
	for _, b := range stats.Badges {
		if b.Unlocked && !unlockedBefore[b.ID] {
			fmt.Fprintf(out, "Badge unlocked: %s %s - %s\n", b.Emoji, b.Name, b.Description)
		}
	}
	return nil
}

func readChoice(scanner *bufio.Scanner, out io.Writer, options int) (int, error) {
	for {
		fmt.Fprintf(out, "Your answer [1-%d]: ", options)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && n >= 1 && n <= options {
			return n - 1, nil
		}
		fmt.Fprintf(out, "Enter a number between 1 and %d.\n", options)
	}
}

func correctText(q domain.Question) string {
	for _, o := range q.Options {
		if o.Correct {
			return o.Text
		}
	}
	return ""
}
