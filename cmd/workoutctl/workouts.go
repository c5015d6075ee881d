package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"example.com/workoutmap/internal/app"
	"example.com/workoutmap/internal/auth"
	"example.com/workoutmap/internal/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged workouts in the order they were added",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ context.Context, s *session) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tTYPE\tTITLE\tDISTANCE_KM\tDURATION_MIN\tMETRIC\tMEASUREMENT")
			for _, w := range s.ctrl.Workouts() {
				e := app.RenderEntry(w)
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s %s\t%s %s\n",
					e.ID, e.Type, e.Title, e.Distance, e.Duration, e.Metric, e.MetricUnit, e.Measurement, e.MeasurementUnit)
			}
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one workout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ context.Context, s *session) error {
			w, err := s.ctrl.Find(args[0])
			if err != nil {
				return err
			}
			e := app.RenderEntry(w)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", e.Icon, e.Title)
			fmt.Fprintf(out, "id:          %s\n", e.ID)
			fmt.Fprintf(out, "logged at:   %s\n", w.CreatedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "position:    %s\n", w.Coords)
			fmt.Fprintf(out, "distance:    %s km\n", e.Distance)
			fmt.Fprintf(out, "duration:    %s min\n", e.Duration)
			metric, measurement := labels(w.Kind)
			fmt.Fprintf(out, "%-12s %s %s\n", metric+":", e.Metric, e.MetricUnit)
			fmt.Fprintf(out, "%-12s %s %s\n", measurement+":", e.Measurement, e.MeasurementUnit)
			return nil
		})
	},
}

var (
	logLat       float64
	logLng       float64
	logDistance  string
	logDuration  string
	logCadence   string
	logElevation string
)

var logCmd = &cobra.Command{
	Use:       "log <running|cycling>",
	Short:     "Log a workout at a position",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(domain.KindRunning), string(domain.KindCycling)},
	RunE: func(cmd *cobra.Command, args []string) error {
		coords := domain.Coordinates{Lat: logLat, Lng: logLng}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.ctrl.LocationResolved(coords); err != nil {
				return err
			}
			if err := s.ctrl.Click(coords); err != nil {
				return err
			}
			w, err := s.ctrl.Submit(ctx, domain.FormInput{
				Type:      args[0],
				Distance:  logDistance,
				Duration:  logDuration,
				Cadence:   logCadence,
				Elevation: logElevation,
			})
			if err != nil {
				if alerts := s.alerts.Drain(); len(alerts) > 0 {
					return fmt.Errorf("%s: %w", strings.Join(alerts, "; "), err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s\n", w.ID, w.Description)
			return nil
		})
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard every stored workout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.New("refusing to discard workouts without --yes")
		}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			discarded := len(s.ctrl.Workouts())
			if err := s.ctrl.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discarded %d workouts\n", discarded)
			return nil
		})
	},
}

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token allowed to call POST /v1/reset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		token, err := auth.IssueResetToken(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func labels(kind domain.Kind) (metric, measurement string) {
	if kind == domain.KindCycling {
		return "speed", "elevation"
	}
	return "pace", "cadence"
}

func init() {
	logCmd.Flags().Float64Var(&logLat, "lat", 0, "Latitude of the workout")
	logCmd.Flags().Float64Var(&logLng, "lng", 0, "Longitude of the workout")
	logCmd.Flags().StringVar(&logDistance, "distance", "", "Distance in km")
	logCmd.Flags().StringVar(&logDuration, "duration", "", "Duration in minutes")
	logCmd.Flags().StringVar(&logCadence, "cadence", "", "Cadence in steps/min (running)")
	logCmd.Flags().StringVar(&logElevation, "elevation", "", "Elevation gain in meters (cycling)")
	_ = logCmd.MarkFlagRequired("lat")
	_ = logCmd.MarkFlagRequired("lng")

	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm discarding every workout")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "workoutctl", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
}
