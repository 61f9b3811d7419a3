package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

type DataCmd struct {
	Export DataExportCmd `cmd:"" help:"Export all local data as JSON."`
	Import DataImportCmd `cmd:"" help:"Replace local data from an export file."`
	Clear  DataClearCmd  `cmd:"" help:"Delete all local data."`
}

type DataExportCmd struct {
	Output string `short:"o" help:"Write to a file instead of stdout." default:""`
}

func (c *DataExportCmd) Run(appCtx *Context) error {
	ctx := context.Background()

	data, err := appCtx.Store.Export(ctx)
	if err != nil {
		return err
	}

	if c.Output == "" {
		fmt.Println(data)
		return nil
	}
	if err := os.WriteFile(c.Output, []byte(data), 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("Exported data to %s\n", c.Output)
	return nil
}

type DataImportCmd struct {
	Input string `arg:"" help:"Export file to import."`
}

func (c *DataImportCmd) Run(appCtx *Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	appCtx.PerformAutomaticBackup(ctx)
	if err := appCtx.Store.Import(ctx, string(data)); err != nil {
		return err
	}
	fmt.Println("Import complete.")
	return nil
}

type DataClearCmd struct {
	Yes bool `help:"Skip the confirmation prompt."`
}

func (c *DataClearCmd) Run(appCtx *Context) error {
	ctx := context.Background()

	if !c.Yes {
		confirmed := false
		prompt := huh.NewConfirm().
			Title("Delete all habits, completions, and settings?").
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	appCtx.PerformAutomaticBackup(ctx)
	if err := appCtx.Store.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Println("All local data cleared.")
	return nil
}
