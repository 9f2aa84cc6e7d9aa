package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	database "smartstudy_backend/internals/databases"
	"smartstudy_backend/internals/seeds"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "AutoMigrate every model and seed the roles table",
		RunE: func(cmd *cobra.Command, args []string) error {
			database.ConnectDB()
			defer database.Close()
			if err := database.Migrate(database.DB); err != nil {
				return err
			}
			log.Println("✅ migrate done")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample users, courses, batches, DPPs, quizzes and a sales executive",
		RunE: func(cmd *cobra.Command, args []string) error {
			database.ConnectDB()
			defer database.Close()
			if migrateFirst {
				if err := database.Migrate(database.DB); err != nil {
					return err
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			return seeds.RunAllSeeds(ctx, database.DB)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "run migrate before seeding")
	return cmd
}

func createSalesExecutiveCmd() *cobra.Command {
	var (
		in       seeds.SalesExecutiveInput
		discount string
	)
	cmd := &cobra.Command{
		Use:   "create-sales-executive",
		Short: "Create a sales executive account (optionally with a first referral code)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if discount != "" {
				d, err := decimal.NewFromString(discount)
				if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
					return errors.New("--code-discount must be a number between 0 and 100")
				}
				in.CodeDiscount = d
			}

			database.ConnectDB()
			defer database.Close()

			se, code, err := seeds.CreateSalesExecutive(cmd.Context(), database.DB, in)
			if err != nil {
				return err
			}
			fmt.Printf("✅ sales executive created: id=%s employee_id=%s\n", se.ID, se.EmployeeID)
			if code != nil {
				fmt.Printf("🎟  referral code: %s (%s%% off)\n", code.Code, code.DiscountPercentage.StringFixed(2))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.UserName, "username", "", "login username")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Password, "password", "", "initial password")
	f.StringVar(&in.EmployeeID, "employee-id", "", "unique employee id")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.FirstName, "first-name", "", "first name")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	f.StringVar(&discount, "code-discount", "", "issue a referral code with this discount percentage")
	for _, name := range []string{"username", "email", "password", "employee-id"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
