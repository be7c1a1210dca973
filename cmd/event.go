package cmd

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/frahmantamala/worktrack/internal/core/events"
	"github.com/frahmantamala/worktrack/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the in-process event bus: list event types, publish test events`,
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the event types the service publishes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range events.Types {
			fmt.Println(t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event through the audit handler for debugging`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var (
	eventData  string
	eventOrgID int64
)

func publishTestEvent(eventType string) error {
	if !slices.Contains(events.Types, eventType) {
		return fmt.Errorf("unknown event type %q, see `worktrack event list`", eventType)
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	events.NewAuditHandler(lg).RegisterEventHandlers(bus)

	testEvent := events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		OrgID:     eventOrgID,
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)
	if err := bus.Publish(context.Background(), testEvent); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	bus.Wait()

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().Int64Var(&eventOrgID, "org", 0, "Organization id stamped on the event")

	eventCmd.AddCommand(listEventsCmd)
	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
