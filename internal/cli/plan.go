package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
)

var (
	planArrival string
	planDinner  bool
	planLaundry bool
	planStudy   int
	planPolicy  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Derive and print an evening timeline",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planArrival, "arrival", "19:00", "Home-arrival time (HH:MM)")
	planCmd.Flags().BoolVar(&planDinner, "dinner", true, "Include dinner")
	planCmd.Flags().BoolVar(&planLaundry, "laundry", false, "Include laundry")
	planCmd.Flags().IntVar(&planStudy, "study", 45, "Study minutes")
	planCmd.Flags().StringVar(&planPolicy, "policy", string(domain.PolicySplit), "Slot-filling policy: split or fixed-bath")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	arrival, err := domain.ParseClock(planArrival)
	if err != nil {
		return fmt.Errorf("arrival: %w", err)
	}
	policy, err := domain.ParsePolicy(planPolicy)
	if err != nil {
		return err
	}

	// Snap the arrival minute onto the planner grid, like the UI's
	// "use current time" control does.
	limits := domain.DefaultLimits()
	in := domain.PlannerInput{
		ArrivalHour:   arrival / 60,
		ArrivalMinute: domain.RoundToStep(arrival%60, limits.ArrivalStep),
		HasDinner:     planDinner,
		HasLaundry:    planLaundry,
		StudyMinutes:  planStudy,
	}
	if err := in.Validate(limits); err != nil {
		return err
	}

	events := domain.BuildSchedule(in, policy)
	for _, e := range events {
		if e.DurationMinute > 0 {
			fmt.Printf("%5s → %-5s  %s (%d分)\n",
				domain.Clock(e.StartMinute),
				domain.Clock(e.StartMinute+e.DurationMinute),
				e.Label, e.DurationMinute)
		} else {
			fmt.Printf("%5s          %s\n", domain.Clock(e.StartMinute), e.Label)
		}
	}

	free := domain.TotalFreeTime(events)
	fmt.Println("--------------------------------")
	fmt.Printf("自由時間: %d分\n", free)
	if free < 0 {
		fmt.Println("時間が足りません。学習時間を短くするか、条件を見直してください。")
	}
	return nil
}
