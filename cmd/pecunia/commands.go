package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pecunia-backend/internal/gateway"
	"pecunia-backend/internal/intent"
	"pecunia-backend/internal/models"
	"pecunia-backend/internal/services"
	"pecunia-backend/internal/session"

	"github.com/spf13/cobra"
)

var (
	income float64
	budget float64
)

// classifyCmd routes a message without dispatching it
var classifyCmd = &cobra.Command{
	Use:   "classify [message]",
	Short: "Show the category and extracted payload for a message",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

// askCmd sends one message through a fresh session
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a message through a throwaway session and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func runClassify(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	category := intent.Classify(text)
	profile := models.DefaultProfile()

	var payload interface{}
	switch category {
	case models.CategoryTravelPlanning:
		payload = intent.ExtractTravel(text, profile)
	case models.CategoryGoalStrategy:
		payload = intent.ExtractGoal(text, profile, time.Now())
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Category models.TaskCategory `json:"category"`
			Keyword  string              `json:"keyword,omitempty"`
			Payload  interface{}         `json:"payload,omitempty"`
		}{category, intent.MatchedKeyword(text), payload})
	}

	fmt.Fprintf(out, "category: %s\n", category)
	if kw := intent.MatchedKeyword(text); kw != "" {
		fmt.Fprintf(out, "keyword:  %q\n", kw)
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "payload:  %s\n", raw)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout+5*time.Second)
	defer cancel()

	gw := gateway.NewHTTPGateway(baseURL, timeout, logger)
	registry := session.NewRegistry(nil)
	assistant := services.NewAssistantService(registry, gw, nil, logger)
	defer assistant.Close()

	sess := registry.Create()
	defer registry.Delete(sess.ID())

	var patch models.ProfilePatch
	if cmd.Flags().Changed("income") {
		patch.MonthlyIncome = &income
	}
	if cmd.Flags().Changed("budget") {
		patch.MonthlyBudget = &budget
	}
	if !patch.IsEmpty() {
		sess.ApplyProfilePatch(patch)
	}

	reply, err := assistant.HandleMessage(ctx, sess.ID(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reply.Message)
	}

	fmt.Fprintln(out, reply.Message.Body)
	for _, a := range reply.Message.QuickActions {
		fmt.Fprintf(out, "  → %s (%s)\n", a.Label, a.ActionID)
	}
	if lastErr := sess.LastError(); lastErr != nil {
		return fmt.Errorf("analysis backend failed: %w", lastErr)
	}
	return nil
}
