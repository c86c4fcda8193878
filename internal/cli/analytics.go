package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soudousya-lab/weekday-planner/internal/analytics"
	"github.com/soudousya-lab/weekday-planner/internal/config"
	"github.com/soudousya-lab/weekday-planner/internal/store"
)

var (
	analyticsDays int
	analyticsDB   string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print aggregate statistics over stored days",
	Args:  cobra.NoArgs,
	RunE:  runAnalytics,
}

func init() {
	analyticsCmd.Flags().IntVar(&analyticsDays, "days", 30, "Trailing window size in days")
	analyticsCmd.Flags().StringVar(&analyticsDB, "db", "", "Database path (defaults to DB_PATH)")
}

func runAnalytics(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	dbPath := analyticsDB
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		dbPath = cfg.DBPath
	}

	repo, err := store.OpenSQLite(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = repo.Close() }()

	startDate := time.Now().AddDate(0, 0, -analyticsDays).Format("2006-01-02")
	records, err := repo.ListRecords(ctx, startDate, "", 0)
	if err != nil {
		return err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	s := analytics.Aggregate(records)
	fmt.Printf("Days recorded       %d\n", s.TotalDays)
	fmt.Printf("Avg free time       %d分\n", s.AvgFreeTime)
	fmt.Printf("Avg study time      %d分\n", s.AvgStudyTime)
	fmt.Printf("Avg arrival         %s\n", s.AvgArrivalTime)
	fmt.Printf("Dinner rate         %d%%\n", s.DinnerRate)
	fmt.Printf("Laundry rate        %d%%\n", s.LaundryRate)
	if len(s.WeeklyTrend) > 0 {
		fmt.Println("--------------------------------")
		for _, w := range s.WeeklyTrend {
			fmt.Printf("%s~  free %d分 / study %d分\n", w.StartDate, w.AvgFreeTime, w.AvgStudyTime)
		}
	}
	return nil
}
