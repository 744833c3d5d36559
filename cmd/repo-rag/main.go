// Package main provides the repo-rag command line for indexing and querying.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/repo-rag/internal/app"
	"github.com/bull/repo-rag/internal/config"
	"github.com/bull/repo-rag/internal/service"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	bold   = color.New(color.Bold)
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "repo-rag",
	Short:         "Index git repositories and documents, then ask questions about them",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <repo-url>",
	Short: "Clone, summarize and index a repository",
	Long: `Clones the repository, asks the code model for a summary of every text
file and of the repository as a whole, and stores the results in the
vector collection.

Environment variables:
  QDRANT_HOST      Qdrant hostname (default: localhost)
  QDRANT_PORT      Qdrant gRPC port (default: 6334)
  LLM_API_KEY      API key for the LLM provider (or MISTRAL_API_KEY)
  GITHUB_TOKEN     GitHub token for default branch lookup (optional)`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a question from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var addDocumentCmd = &cobra.Command{
	Use:   "add-document <path>",
	Short: "Split a text file into chunks and index them",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddDocument,
}

var deleteCollectionCmd = &cobra.Command{
	Use:   "delete-collection",
	Short: "Drop the vector collection",
	Args:  cobra.NoArgs,
	RunE:  runDeleteCollection,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vector store health and collection size",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file overriding the environment")

	ingestCmd.Flags().String("branch", "main", `branch to ingest; "default" looks up the repository's default branch`)
	queryCmd.Flags().IntP("k", "k", 0, "number of excerpts to retrieve (default 100)")
	queryCmd.Flags().Bool("sources", false, "print the retrieved excerpts")

	rootCmd.AddCommand(ingestCmd, queryCmd, addDocumentCmd, deleteCollectionCmd, statusCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		red.Fprintf(os.Stderr, "Error: %s\n", errorText(err))
		os.Exit(1)
	}
}

// errorText prefers the caller-facing message for service errors.
func errorText(err error) string {
	var se *service.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

func openApp() (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.NewLogger(cfg))
}

func runIngest(cmd *cobra.Command, args []string) error {
	branch, _ := cmd.Flags().GetString("branch")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	fmt.Printf("Ingesting %s...\n", args[0])

	resp, err := a.Service.IngestRepository(cmd.Context(), args[0], branch)
	if err != nil {
		return err
	}

	fmt.Println()
	green.Println("Ingestion complete!")
	fmt.Printf("  Repository: %s (branch %s)\n", resp.RepoName, resp.Branch)
	fmt.Printf("  Files: %d\n", resp.FilesProcessed)
	fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Second))
	fmt.Println()
	bold.Println("Summary:")
	fmt.Println(resp.RepoSummary)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	k, _ := cmd.Flags().GetInt("k")
	showSources, _ := cmd.Flags().GetBool("sources")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Service.Query(cmd.Context(), args[0], k)
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if showSources {
		fmt.Println()
		bold.Printf("Sources (%d):\n", len(resp.RawResults))
		for i, r := range resp.RawResults {
			yellow.Printf("[%d] ", i+1)
			fmt.Println(preview(r, 200))
		}
	}
	return nil
}

func runAddDocument(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Service.StoreDocument(cmd.Context(), filepath.Base(args[0]), args[0])
	if err != nil {
		return err
	}

	green.Printf("Stored %s\n", resp.Filename)
	fmt.Printf("  Chunks: %d\n", resp.Chunks)
	fmt.Printf("  %s\n", resp.Validation)
	return nil
}

func runDeleteCollection(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Service.DeleteCollection(cmd.Context())
	if err != nil {
		return err
	}
	green.Println(resp.Message)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Service.Status(cmd.Context())
	if err != nil {
		return err
	}

	health := green.Sprint("healthy")
	if !resp.Healthy {
		health = red.Sprint("unreachable")
	}
	fmt.Printf("Vector store: %s\n", health)
	fmt.Printf("Collection:   %s\n", resp.Collection)
	if !resp.Exists {
		yellow.Println("  not created yet")
		return nil
	}
	fmt.Printf("  Dimension: %d\n", resp.Dimension)
	fmt.Printf("  Points:    %d\n", resp.PointsCount)
	return nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
