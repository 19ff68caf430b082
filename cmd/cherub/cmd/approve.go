package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var approveAddr string

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Interactively resolve pending commit-tier approvals",
	Long: `Poll a running cherub instance's admin surface for pending commit-tier
approvals and resolve each one from a y/n prompt.`,
	RunE: runApprove,
}

func init() {
	approveCmd.Flags().StringVar(&approveAddr, "addr", "127.0.0.1:8787", "admin surface address of a running cherub instance")
	rootCmd.AddCommand(approveCmd)
}

type pendingApproval struct {
	ID       string `json:"id"`
	Tool     string `json:"tool"`
	Action   string `json:"action"`
	Argument string `json:"argument"`
}

func runApprove(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	base := "http://" + approveAddr

	resp, err := client.Get(base + "/approvals")
	if err != nil {
		return fmt.Errorf("fetch pending approvals: %w", err)
	}
	defer resp.Body.Close()

	var pending []pendingApproval
	if err := json.NewDecoder(resp.Body).Decode(&pending); err != nil {
		return fmt.Errorf("decode pending approvals: %w", err)
	}

	if len(pending) == 0 {
		fmt.Println("no pending approvals")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	for _, p := range pending {
		fmt.Printf("approve %s.%s %q? [y/N] ", p.Tool, p.Action, p.Argument)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		verb := "deny"
		if answer == "y" || answer == "yes" {
			verb = "approve"
		}
		resp, err := client.Post(fmt.Sprintf("%s/approvals/%s/%s", base, p.ID, verb), "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve %s: %v\n", p.ID, err)
			continue
		}
		resp.Body.Close()
	}
	return nil
}
