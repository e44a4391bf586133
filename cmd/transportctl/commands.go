package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/transport-request-api/internal/bootstrap"
	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/pkg/database"
)

const dayLayout = "2006-01-02"

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			applied, err := database.Migrate(cmd.Context(), e.deps.DB)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
			}
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var req models.CreateAdminRequest
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *bootstrap.Services) error {
				info, err := svc.Auth.CreateAdmin(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", info.Email, info.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Login email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password, at least 8 characters (required)")
	cmd.Flags().StringVar(&req.FirstName, "first", "", "First name (required)")
	cmd.Flags().StringVar(&req.LastName, "last", "", "Last name (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createDistrictCmd() *cobra.Command {
	var req models.CreateDistrictAccountRequest
	cmd := &cobra.Command{
		Use:   "create-district",
		Short: "Provision a district staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *bootstrap.Services) error {
				info, err := svc.Districts.CreateAccount(ctx, operator, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created district account %s for %s\n", info.Email, info.District)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "District name (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Login email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password (required)")
	cmd.Flags().StringVar(&req.Contact, "contact", "", "Contact phone")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		reportType string
		format     string
		district   string
		school     string
		status     string
		from       string
		to         string
		out        string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a report to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := models.ReportRequest{
				Type:     models.ReportType(reportType),
				Format:   models.ReportFormat(format),
				District: district,
				School:   school,
				Status:   status,
			}
			var err error
			if req.From, req.To, err = parseDays(from, to); err != nil {
				return err
			}

			return withServices(cmd.Context(), func(ctx context.Context, svc *bootstrap.Services) error {
				file, err := svc.Reports.Generate(ctx, operator, req)
				if err != nil {
					return err
				}
				target := out
				if target == "" {
					target = file.Filename
				}
				if err := os.WriteFile(target, file.Body, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", file.Rows, target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&reportType, "type", "t", string(models.ReportTransportation), "Report type: transportation|support|districts|system")
	cmd.Flags().StringVarP(&format, "format", "f", string(models.ReportFormatCSV), "Output format: csv|pdf")
	cmd.Flags().StringVar(&district, "district", "", "Restrict to one district")
	cmd.Flags().StringVar(&school, "school", "", "Restrict to one school")
	cmd.Flags().StringVar(&status, "status", "", "Restrict to one status")
	cmd.Flags().StringVar(&from, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last day, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (defaults to the generated file name)")
	return cmd
}

func pruneDocumentsCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune-documents",
		Short: "Delete uploaded DNR documents no request refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *bootstrap.Services) error {
				deleted, err := svc.Documents.PruneOrphans(ctx, svc.DocumentRefs, olderThan)
				if err != nil {
					return err
				}
				for _, name := range deleted {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d documents\n", len(deleted))
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Only remove uploads older than this")
	return cmd
}

// parseDays reads an inclusive day range. The end covers the whole day.
func parseDays(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if strings.TrimSpace(from) != "" {
		t, err := time.Parse(dayLayout, strings.TrimSpace(from))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --from %q: want YYYY-MM-DD", from)
		}
		start = &t
	}
	if strings.TrimSpace(to) != "" {
		t, err := time.Parse(dayLayout, strings.TrimSpace(to))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --to %q: want YYYY-MM-DD", to)
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("--from must not be after --to")
	}
	return start, end, nil
}
