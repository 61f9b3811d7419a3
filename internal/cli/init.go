package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing store before initialization."`
}

func (c *InitCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	storePath := appCtx.Config.StoreFile()

	if c.Force {
		if _, err := os.Stat(storePath); err == nil {
			if err := appCtx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.RemoveAll(storePath); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			fmt.Printf("Deleted existing store at: %s\n", storePath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
		fmt.Println("Re-run 'habitkit init' to create a fresh store.")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(storePath), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Writing the default settings materializes the store on disk
	if err := appCtx.Store.SaveSettings(ctx, appCtx.Store.Settings(ctx)); err != nil {
		return err
	}

	fmt.Printf("Initialized habitkit storage at: %s\n", storePath)
	return nil
}
