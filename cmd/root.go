// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tikrip/internal/config"
	"tikrip/internal/download"
	"tikrip/internal/history"
	"tikrip/internal/httputil"
	"tikrip/internal/media"
	"tikrip/internal/tiktok"
	"tikrip/internal/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDownload bool
	flagOutput   string
	flagQuality  string
	flagJSON     bool
	flagDebug    bool
	flagNoHist   bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tikrip <url>",
	Short: "Extract TikTok post metadata and media from the terminal",
	Long: `Tikrip resolves a TikTok post URL to its metadata and watermark-free
media links, falling back across the web page, the mobile API, and the
embed player until one answers.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              extractRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVarP(&flagDownload, "download", "d", false, "Download a media variant after extraction")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Download directory (default from config)")
	rootCmd.Flags().StringVarP(&flagQuality, "quality", "q", "", "Auto-pick variant quality: 480 | 540 | 720 | 1080")
	rootCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output the result envelope as indented JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoHist, "no-history", false, "Skip recording this extraction")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagQuality != "" {
		cfg.Quality = flagQuality
	}
	if flagOutput != "" {
		cfg.DownloadDir = flagOutput
	}
	if flagDebug {
		cfg.Debug = true
	}
	if flagNoHist {
		cfg.History = false
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetPrefix("[tikrip] ")
	} else {
		log.SetFlags(0)
	}

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(formatStr string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(formatStr, args...)
	}
}

func extractRun(cmd *cobra.Command, args []string) error {
	scraper := newScraper()
	result := scraper.Extract(cmd.Context(), args[0])

	if result.Status == media.StatusSuccess && cfg.History {
		recordHistory(args[0], result.Data)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		if result.Status != media.StatusSuccess {
			os.Exit(1)
		}
	} else {
		if result.Status != media.StatusSuccess {
			return fmt.Errorf("%s", result.Message)
		}
		printSummary(result.Data)
	}

	if flagDownload {
		return downloadPost(cmd, result.Data)
	}
	return nil
}

func newScraper() *tiktok.Scraper {
	scraper := tiktok.NewScraper()
	if cfg.Debug {
		scraper.Logf = debugf
	}
	return scraper
}

// recordHistory saves a successful extraction. Failures are logged, not
// fatal: history is a convenience, never a reason to fail the command.
func recordHistory(url string, post *media.Post) {
	path, err := cfg.DatabasePath()
	if err != nil {
		debugf("history path: %v", err)
		return
	}
	store, err := history.Open(path)
	if err != nil {
		debugf("opening history: %v", err)
		return
	}
	defer store.Close()

	err = store.Record(history.Entry{
		PostID:      post.ID,
		URL:         url,
		Type:        post.Type,
		Author:      post.Author.Username,
		Description: post.Desc,
	})
	if err != nil {
		debugf("recording history: %v", err)
	}
}

func printSummary(p *media.Post) {
	fmt.Printf("@%s", p.Author.Username)
	if p.Author.Name != "" && p.Author.Name != p.Author.Username {
		fmt.Printf(" (%s)", p.Author.Name)
	}
	fmt.Println()
	if p.Desc != "" {
		fmt.Println(p.Desc)
	}
	fmt.Printf("Type: %s  ID: %s\n", p.Type, p.ID)
	if p.CreatedAt != "" {
		fmt.Printf("Posted: %s  Region: %s\n", p.CreatedAt, p.Region)
	}
	fmt.Printf("Views: %s  Likes: %s  Comments: %s  Shares: %s\n",
		p.Statistics.Views, p.Statistics.Likes, p.Statistics.Comments, p.Statistics.Shares)
	if p.Music.Title != "" {
		fmt.Printf("Music: %s", p.Music.Title)
		if p.Music.Author != "" {
			fmt.Printf(" by %s", p.Music.Author)
		}
		fmt.Println()
	}

	switch p.Type {
	case media.Video:
		if p.Video == nil {
			return
		}
		fmt.Printf("Variants (no watermark): %d, (watermarked): %d\n",
			len(p.Video.NoWatermark), len(p.Video.WithWatermark))
		for _, v := range p.Video.NoWatermark {
			fmt.Printf("  %s  %s\n  %s\n", v.Quality, v.Size, v.URL)
		}
		if p.Video.HD != nil {
			fmt.Printf("HD: %s\n", *p.Video.HD)
		}
	case media.Images:
		fmt.Printf("Images: %d\n", len(p.Images))
		for i, img := range p.Images {
			fmt.Printf("  [%d] %s\n", i+1, img.URL)
		}
	}
}

// downloadPost saves the chosen rendition of a post. Videos go through
// variant selection; image posts are saved in full.
func downloadPost(cmd *cobra.Command, p *media.Post) error {
	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return fmt.Errorf("resolving download directory: %w", err)
	}
	client := httputil.NewClient(0)

	if p.Type == media.Images {
		for i, img := range p.Images {
			name := fmt.Sprintf("%s_%s_%02d", p.Author.Username, p.ID, i+1)
			path, err := download.Save(cmd.Context(), client, img.URL, name, dir)
			if err != nil {
				return fmt.Errorf("downloading image %d: %w", i+1, err)
			}
			fmt.Printf("Saved %s\n", path)
		}
		return nil
	}

	variant, err := pickVariant(cmd, p.Video)
	if err != nil {
		return err
	}
	debugf("downloading %s variant from %s", variant.Quality, variant.URL)

	name := fmt.Sprintf("%s_%s", p.Author.Username, p.ID)
	path, err := download.Save(cmd.Context(), client, variant.URL, name, dir)
	if err != nil {
		return fmt.Errorf("downloading video: %w", err)
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

// pickVariant resolves which rendition to download. An explicit --quality
// picks automatically; otherwise the user chooses interactively.
func pickVariant(cmd *cobra.Command, v *media.VideoMedia) (media.Variant, error) {
	if v == nil {
		return media.Variant{}, fmt.Errorf("post has no video media")
	}
	if !cmd.Flags().Changed("quality") {
		return ui.SelectVariant(v)
	}

	want := cfg.Quality + "p"
	pools := [][]media.Variant{v.NoWatermark, v.WithWatermark}
	for _, pool := range pools {
		for _, variant := range pool {
			if strings.EqualFold(variant.Quality, want) {
				return variant, nil
			}
		}
	}
	// No exact match: variants are sorted best first, take the top one.
	for _, pool := range pools {
		if len(pool) > 0 {
			debugf("no %s variant, falling back to %s", want, pool[0].Quality)
			return pool[0], nil
		}
	}
	return media.Variant{}, fmt.Errorf("post has no downloadable variants")
}
