package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cascadelog/internal/app"
	"cascadelog/internal/cascade"
	"cascadelog/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Submit", "Gallery").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(label string) (string, error) {
	fmt.Printf("%s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

// promptLine reads one line of input.
func promptLine(label string) (string, error) {
	fmt.Printf("%s: ", label)
	var line string
	if _, err := fmt.Scanln(&line); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// printStatus renders a DayStatus.
func printStatus(status *cascade.DayStatus) {
	fmt.Printf("%s  %s  [%s]\n", status.Date, status.State, status.Phase)
	if status.Description != "" {
		fmt.Printf("  %s\n", status.Description)
	}
	for _, slot := range cascade.Slots {
		ref := status.Files.Slot(slot)
		if ref == nil {
			continue
		}
		fmt.Printf("  %-4s %s\n", slot, ref.Name)
	}
	if status.VerifyErr != nil {
		fmt.Printf("  warning: could not verify with server: %v\n", status.VerifyErr)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cascadelog",
	Short: "Daily front-end challenge tracker",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("API URL:     %s\n", cfg.API.BaseURL)
		fmt.Printf("Auth URL:    %s\n", cfg.API.AuthURL)
		fmt.Printf("Cache:       %s\n", cfg.Cache.Type)
		fmt.Printf("Mirror:      %s (%s)\n", cfg.Mirror.Name, cfg.Mirror.Type)
		fmt.Printf("Idle limit:  %d minutes\n", cfg.Session.IdleLimitMinutes)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Log Level:   %s\n", cfg.LogLevel)
		return nil
	},
}

// auth commands
var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Sign in and store a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword("Password")
		if err != nil {
			return err
		}

		a, err := newApp("Login")
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		fmt.Printf("Logged in as %s\n", sess.DisplayName)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Logout")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup EMAIL",
	Short: "Register a new account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		phone, _ := cmd.Flags().GetString("phone")

		password, err := promptPassword("Password")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password")
		if err != nil {
			return err
		}

		a, err := newApp("Signup")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Signup(cmd.Context(), name, args[0], phone, password, confirm); err != nil {
			return err
		}

		fmt.Println("Account created. Check your email to confirm, then log in.")
		return nil
	},
}

// reset-password command
var resetCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset a forgotten password",
}

var resetRequestCmd = &cobra.Command{
	Use:   "request EMAIL",
	Short: "Mail a one-time password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RequestOTP")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RequestOTP(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("One-time password sent. Complete the reset with: cascadelog reset-password confirm", args[0])
		return nil
	},
}

var resetConfirmCmd = &cobra.Command{
	Use:   "confirm EMAIL",
	Short: "Set a new password with the mailed OTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		otp, err := promptLine("One-time password")
		if err != nil {
			return err
		}
		password, err := promptPassword("New password")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm new password")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		a, err := newApp("ResetPassword")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ResetPassword(cmd.Context(), args[0], otp, password); err != nil {
			return err
		}
		fmt.Println("Password updated. Log in with the new password.")
		return nil
	},
}

// day lifecycle commands
var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's challenge status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Today")
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.Today(cmd.Context())
		if err != nil {
			return err
		}
		printStatus(status)
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start today's challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("StartDay")
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.StartDay(cmd.Context())
		if err != nil {
			return err
		}
		printStatus(status)
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Upload today's submission",
	RunE: func(cmd *cobra.Command, args []string) error {
		htmlPath, _ := cmd.Flags().GetString("html")
		cssPath, _ := cmd.Flags().GetString("css")
		jsPath, _ := cmd.Flags().GetString("js")
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp("Submit")
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.Submit(cmd.Context(), htmlPath, cssPath, jsPath, description)
		if err != nil {
			return err
		}

		fmt.Println("Submitted.")
		printStatus(status)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Reopen today's submission for editing",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Edit")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Edit(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Reopened for editing. Submit again to overwrite.")
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Discard today's local entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			answer, err := promptLine("Discard today's local entry? [y/N]")
			if err != nil || !strings.EqualFold(answer, "y") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.Delete(cmd.Context())
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("Nothing to delete.")
			return nil
		}
		fmt.Println("Deleted local entry. The server copy, if any, is unchanged.")
		return nil
	},
}

// consistency command
var consistencyCmd = &cobra.Command{
	Use:   "consistency",
	Short: "Show the activity heatmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")

		a, err := newApp("Consistency")
		if err != nil {
			return err
		}
		defer a.Close()

		if year == 0 {
			year = time.Now().Year()
		}
		report, err := a.Consistency(cmd.Context(), year)
		if err != nil {
			return err
		}

		fmt.Printf("Consistency %d\n", report.Year)
		fmt.Printf("Streak: %d  This month: %d  Total: %d\n\n", report.Streak, report.Monthly, report.Total)
		printHeatmap(report)
		return nil
	},
}

// heatmapGlyphs maps a DayClass to its terminal cell.
var heatmapGlyphs = map[cascade.DayClass]string{
	cascade.ClassEmpty:     "  ",
	cascade.ClassLocked:    " .",
	cascade.ClassMissed:    " -",
	cascade.ClassCompleted: " #",
}

// printHeatmap renders the year grid: one column per month, one row per day.
func printHeatmap(report *cascade.ConsistencyReport) {
	fmt.Println("    J  F  M  A  M  J  J  A  S  O  N  D")
	for day := 0; day < 31; day++ {
		fmt.Printf("%2d ", day+1)
		for m := 0; m < 12; m++ {
			fmt.Printf(" %s", heatmapGlyphs[report.Months[m][day]])
		}
		fmt.Println()
	}
	fmt.Println("\n # submitted   - missed   . upcoming")
}

// gallery commands
var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Browse past submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, month := galleryPeriod(cmd)

		a, err := newApp("Gallery")
		if err != nil {
			return err
		}
		defer a.Close()

		days, err := a.Gallery(cmd.Context(), year, month)
		if err != nil {
			return err
		}

		fmt.Printf("%s %d\n", month, year)
		for _, day := range days {
			if day.Item == nil {
				fmt.Printf("%s  %s\n", day.Date, day.Class)
				continue
			}
			fmt.Printf("%s  %s  (id %s)\n", day.Date, day.Class, day.Item.ID)
		}
		return nil
	},
}

var gallerySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Archive a month of submissions to the mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, month := galleryPeriod(cmd)

		a, err := newApp("SyncGallery")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.SyncGallery(cmd.Context(), year, month)
		if err != nil {
			return err
		}
		fmt.Printf("Archived %d day(s), %d file(s)\n", result.Days, result.Files)
		return nil
	},
}

// galleryPeriod resolves the --year/--month flags, defaulting to the current month.
func galleryPeriod(cmd *cobra.Command) (int, time.Month) {
	now := time.Now()
	year, _ := cmd.Flags().GetInt("year")
	monthNum, _ := cmd.Flags().GetInt("month")
	if year == 0 {
		year = now.Year()
	}
	if monthNum == 0 {
		return year, now.Month()
	}
	return year, time.Month(monthNum)
}

// profile commands
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Profile")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Profile(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s <%s>\n", p.Details.Name, p.Details.Email)
		if p.Details.About != "" {
			fmt.Printf("\n%s\n", p.Details.About)
		}
		fmt.Printf("\nStreak: %d  This month: %d\n", p.Stats.Streak, p.Stats.Monthly)
		if len(p.Activity.Recent) > 0 {
			fmt.Printf("Recent: %s\n", strings.Join(p.Activity.Recent, ", "))
		}
		return nil
	},
}

var profileAboutCmd = &cobra.Command{
	Use:   "about TEXT",
	Short: "Update the about text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UpdateAbout")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UpdateAbout(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("About updated.")
		return nil
	},
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar IMAGE",
	Short: "Upload a new avatar image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UpdateAvatar")
		if err != nil {
			return err
		}
		defer a.Close()

		url, err := a.UpdateAvatar(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Avatar updated: %s\n", url)
		return nil
	},
}

// playground command
var playgroundCmd = &cobra.Command{
	Use:   "playground [DIR]",
	Short: "Serve a live preview of a working directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		a, err := newApp("Playground")
		if err != nil {
			return err
		}
		defer a.Close()

		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}

		return a.Playground(cmd.Context(), dir, addr)
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// reset-password subcommands
	resetCmd.AddCommand(resetRequestCmd)
	resetCmd.AddCommand(resetConfirmCmd)

	// gallery subcommands
	galleryCmd.AddCommand(gallerySyncCmd)
	galleryCmd.PersistentFlags().IntP("year", "y", 0, "Year (default: current)")
	galleryCmd.PersistentFlags().IntP("month", "m", 0, "Month 1-12 (default: current)")

	// profile subcommands
	profileCmd.AddCommand(profileAboutCmd)
	profileCmd.AddCommand(profileAvatarCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(signupCmd)
	signupCmd.Flags().String("name", "", "Display name")
	signupCmd.Flags().String("phone", "", "Phone number")
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().String("html", "", "HTML file to upload")
	submitCmd.Flags().String("css", "", "CSS file to upload")
	submitCmd.Flags().String("js", "", "JS file to upload")
	submitCmd.Flags().StringP("description", "d", "", "Submission description")
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(consistencyCmd)
	consistencyCmd.Flags().IntP("year", "y", 0, "Year (default: current)")
	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(playgroundCmd)
	playgroundCmd.Flags().String("addr", "", "Listen address (default from config)")
}
