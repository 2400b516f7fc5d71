package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shopdesk-backend/internal/catalog"
	"github.com/angelmondragon/shopdesk-backend/pkg/auth"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
)

type importOptions struct {
	file   string
	url    string
	userID uint64
}

type feedImporter interface {
	Import(ctx context.Context, p auth.Principal, raw []byte, sourceURL string) (*catalog.ImportResult, error)
	ImportFromURL(ctx context.Context, p auth.Principal, rawURL string) (*catalog.ImportResult, error)
}

func newImportCmd() *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a supplier feed on behalf of a shop account",
		Example: "  catalogctl import --user 4 --file shop1.yaml\n" +
			"  catalogctl import --user 4 --url https://supplier.example.com/feed.yaml",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := opts.validate(); err != nil {
				return err
			}
			a, err := bootApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, a.Close())
			}()

			user, err := a.users.FindByID(cmd.Context(), opts.userID)
			if err != nil {
				return fmt.Errorf("load user %d: %w", opts.userID, err)
			}
			result, err := runImport(cmd.Context(), a.catalog, principalFor(user), opts, a.cfg.Catalog.FeedDir, a.cfg.Catalog.MaxFeedBytes)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "feed file, relative to the configured feed directory")
	cmd.Flags().StringVar(&opts.url, "url", "", "feed URL to fetch")
	cmd.Flags().Uint64Var(&opts.userID, "user", 0, "id of the shop account that owns the feed")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}

func (o importOptions) validate() error {
	if o.userID == 0 {
		return fmt.Errorf("--user is required")
	}
	if strings.TrimSpace(o.file) == "" && strings.TrimSpace(o.url) == "" {
		return fmt.Errorf("one of --file or --url is required")
	}
	return nil
}

func principalFor(user *models.User) auth.Principal {
	return auth.Principal{UserID: user.ID, Type: user.Type, IsStaff: user.IsStaff}
}

func runImport(ctx context.Context, importer feedImporter, p auth.Principal, opts importOptions, feedDir string, maxBytes int64) (*catalog.ImportResult, error) {
	if opts.url != "" {
		return importer.ImportFromURL(ctx, p, opts.url)
	}
	path, err := resolveFeedPath(feedDir, opts.file)
	if err != nil {
		return nil, err
	}
	raw, err := readFeedFile(path, maxBytes)
	if err != nil {
		return nil, err
	}
	return importer.Import(ctx, p, raw, "")
}

// resolveFeedPath keeps relative feed paths inside feedDir.
func resolveFeedPath(feedDir, file string) (string, error) {
	file = strings.TrimSpace(file)
	if filepath.IsAbs(file) {
		return filepath.Clean(file), nil
	}
	base := filepath.Clean(feedDir)
	path := filepath.Join(base, file)
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "feed file must stay inside the feed directory").
			WithDetails(map[string][]string{"file": {file}})
	}
	return path, nil
}

func readFeedFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "feed file not readable")
	}
	defer f.Close()

	reader := io.Reader(f)
	if maxBytes > 0 {
		reader = io.LimitReader(f, maxBytes+1)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	return raw, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
