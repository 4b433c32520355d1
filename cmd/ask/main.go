package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/pkg/serverutils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	baseURL   string
	sessionID string
	timeout   time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "ask [question]",
		Short:         "Ask the legal research service a question",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAsk,
	}
	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:3000/api", "API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Request timeout")
	root.Flags().StringVarP(&sessionID, "session", "s", "", "Session id sent as "+serverutils.SessionHeader)
	root.Flags().StringSlice("context", nil, "Prior questions used for term carry-over")

	root.AddCommand(newFeedbackCommand(), newStatsCommand(), newTailCommand())

	if err := root.Execute(); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	priorTurns, _ := cmd.Flags().GetStringSlice("context")
	req := dto.LegalQueryRequest{
		Query:     strings.Join(args, " "),
		SessionId: sessionID,
		Context:   priorTurns,
	}

	var res serverutils.Response[dto.LegalQueryResponse]
	if err := sendRequest(http.MethodPost, "/legal/v1/query", req, &res); err != nil {
		return err
	}
	printAnswer(&res.Data)
	return nil
}

func newFeedbackCommand() *cobra.Command {
	var (
		rating  int
		helpful string
		comment string
	)
	cmd := &cobra.Command{
		Use:   "feedback [query_record_id]",
		Short: "Rate a previous answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]interface{}{"query_record_id": args[0]}
			if rating > 0 {
				req["rating"] = rating
			}
			if helpful != "" {
				req["is_helpful"] = helpful == "true" || helpful == "yes"
			}
			if comment != "" {
				req["comment"] = comment
			}

			var res serverutils.Response[dto.FeedbackResponse]
			if err := sendRequest(http.MethodPost, "/legal/v1/feedback", req, &res); err != nil {
				return err
			}
			color.Green("Feedback recorded at %s", res.Data.RecordedAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&helpful, "helpful", "", "Whether the answer helped (true|false)")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "Free-text comment")
	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate feedback metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var res serverutils.Response[dto.FeedbackStatsResponse]
			if err := sendRequest(http.MethodGet, "/legal/v1/feedback/stats", nil, &res); err != nil {
				return err
			}
			prettyPrint(res.Data)
			return nil
		},
	}
}

func sendRequest(method, path string, body interface{}, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(serverutils.SessionHeader, sessionID)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}

func printAnswer(res *dto.LegalQueryResponse) {
	color.Cyan("\n%s\n", res.Answer)

	confidence := color.GreenString("%.2f", res.Confidence)
	if res.Confidence < 0.5 {
		confidence = color.YellowString("%.2f", res.Confidence)
	}
	fmt.Printf("\nconfiança %s | %s | %d documentos | %d tokens | %dms\n",
		confidence,
		res.Metadata.QueryType,
		res.Metadata.DocumentsFound,
		res.Metadata.TokensUsed,
		res.Metadata.ProcessingTimeMs,
	)

	if len(res.Citations) > 0 {
		color.Yellow("\nCitações")
		for _, c := range res.Citations {
			fmt.Printf("  [Doc %d] %s\n", c.MarkerIndex, c.Bibliographic)
			if c.ExternalLink != "" {
				color.Blue("          %s", c.ExternalLink)
			}
		}
	}
	if res.QueryRecordId != nil {
		color.HiBlack("\nquery_record_id: %s", res.QueryRecordId.String())
	}
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}
