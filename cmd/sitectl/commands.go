package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	"github.com/tendant/schoolsite/pkg/schoolsite/config"
	"github.com/tendant/schoolsite/pkg/schoolsite/maintenance"
	"github.com/tendant/schoolsite/pkg/schoolsite/mediaurl"
	repopg "github.com/tendant/schoolsite/pkg/schoolsite/repo/postgres"
)

// NewUploadMediaCommand pushes MEDIA_ROOT to the bucket
func NewUploadMediaCommand() *cobra.Command {
	var prefix string
	var public bool

	cmd := &cobra.Command{
		Use:   "upload-media",
		Short: "Upload the contents of MEDIA_ROOT to the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.S3.Bucket == "" {
				return fmt.Errorf("AWS_STORAGE_BUCKET_NAME is not set")
			}
			bucket, err := cfg.BuildBucket()
			if err != nil {
				return fmt.Errorf("failed to build bucket: %w", err)
			}

			stats, err := maintenance.UploadTree(cmd.Context(), cfg.MediaRoot, bucket,
				maintenance.UploadTreeOptions{Prefix: prefix, Public: public}, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if stats.Errors > 0 {
				return fmt.Errorf("%d file(s) failed to upload", stats.Errors)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix inside the bucket (no leading slash)")
	cmd.Flags().BoolVar(&public, "public", false, "make uploaded objects public-read")
	return cmd
}

// NewCheckStorageCommand writes a test file to the active media storage
func NewCheckStorageCommand() *cobra.Command {
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "check-storage",
		Short: "Save a small test file to verify where media uploads go",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, kind, err := activeStore(cfg)
			if err != nil {
				return err
			}
			resolver := mediaurl.New(mediaurl.Config{
				Store:        store,
				CustomDomain: cfg.S3.CustomDomain,
				MediaBase:    cfg.MediaURL,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Storage: %s\n", kind)
			res, err := maintenance.CheckStorage(cmd.Context(), store, resolver, cleanup)
			if res != nil {
				fmt.Fprintf(out, "Saved test file as: %s\n", res.Key)
				fmt.Fprintf(out, "Accessible at URL: %s\n", res.URL)
				if res.Deleted {
					fmt.Fprintln(out, "Deleted test file (cleanup=true)")
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "delete the test file afterwards")
	return cmd
}

// NewPrintConfigCommand prints the media settings without secrets
func NewPrintConfigCommand() *cobra.Command {
	var showEnv bool

	cmd := &cobra.Command{
		Use:   "print-config",
		Short: "Print media URL and storage settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if showEnv {
				usage, err := config.EnvUsage()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, usage)
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			storage := "fs"
			if cfg.BucketConfigured() {
				storage = "s3"
			}
			fmt.Fprintf(out, "MEDIA_URL=%s\n", cfg.MediaURL)
			fmt.Fprintf(out, "MEDIA_ROOT=%s\n", cfg.MediaRoot)
			fmt.Fprintf(out, "STORAGE=%s\n", storage)
			fmt.Fprintf(out, "AWS_STORAGE_BUCKET_NAME=%s\n", cfg.S3.Bucket)
			fmt.Fprintf(out, "AWS_S3_CUSTOM_DOMAIN=%s\n", cfg.S3.CustomDomain)
			fmt.Fprintf(out, "AWS_S3_ENDPOINT_URL=%s\n", cfg.S3.EndpointURL)
			fmt.Fprintf(out, "DATABASE=%s\n", cfg.DatabaseType())
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEnv, "env", false, "list the environment variables instead")
	return cmd
}

// NewMoveRootObjectsCommand relocates legacy root-level seed objects in the bucket
func NewMoveRootObjectsCommand() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "move-root-objects",
		Short: "Move root-level seed images in the bucket into their folders",
		Long: `Move root-level bucket objects whose names match the bundled seed images
into hero/, about/ or director/. Runs as a dry run unless --apply is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.BucketConfigured() {
				return schoolsite.ErrConfigurationMissing
			}
			bucket, err := cfg.BuildBucket()
			if err != nil {
				return fmt.Errorf("failed to build bucket: %w", err)
			}
			stats, err := maintenance.MoveRootObjects(cmd.Context(), bucket, apply, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if stats.Errors > 0 {
				return fmt.Errorf("%d object(s) could not be moved", stats.Errors)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "perform the move")
	return cmd
}

// NewImportStaticCommand imports the bundled front-end images and seed records
func NewImportStaticCommand() *cobra.Command {
	var frontPublic string

	cmd := &cobra.Command{
		Use:   "import-static",
		Short: "Copy seed images into MEDIA_ROOT and create the initial records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseType() == "memory" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: DATABASE_URL is not set, records are created in memory and discarded")
			}
			repo, closeRepo, err := cfg.BuildRepository(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to build repository: %w", err)
			}
			if closeRepo != nil {
				defer closeRepo()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Looking for front public in: %s\n", frontPublic)
			fmt.Fprintf(out, "Media root: %s\n", cfg.MediaRoot)
			_, err = maintenance.ImportStatic(cmd.Context(), frontPublic, cfg.MediaRoot, repo, out)
			return err
		},
	}

	cmd.Flags().StringVar(&frontPublic, "front-public", "../front/public", "directory holding the front-end public assets")
	return cmd
}

// NewMigrateCommand applies the Postgres schema
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, closeRepo, err := cfg.BuildRepository(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to build repository: %w", err)
			}
			if closeRepo != nil {
				defer closeRepo()
			}
			pg, ok := repo.(*repopg.Repository)
			if !ok {
				return fmt.Errorf("migrate needs a postgres DATABASE_URL")
			}
			if err := pg.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
			return nil
		},
	}
}

// NewVersionCommand prints build information
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sitectl %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// activeStore returns the store new media goes to: the bucket when
// configured, local storage otherwise
func activeStore(cfg *config.ServerConfig) (schoolsite.BlobStore, string, error) {
	if cfg.BucketConfigured() {
		bucket, err := cfg.BuildBucket()
		if err != nil {
			return nil, "", fmt.Errorf("failed to build bucket: %w", err)
		}
		return bucket, "s3 bucket " + bucket.Bucket(), nil
	}
	store, err := cfg.BuildLocalStore()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build local storage: %w", err)
	}
	return store, "local " + cfg.MediaRoot, nil
}
