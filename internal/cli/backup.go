package cli

import (
	"context"
	"fmt"
	"path/filepath"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore from a backup archive."`
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(appCtx *Context) error {
	path, err := appCtx.Backup.Create(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Created backup: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(appCtx *Context) error {
	backups, err := appCtx.Backup.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}
	for _, b := range backups {
		fmt.Printf("%s  %8d bytes  %s\n", b.Timestamp.Format("2006-01-02 15:04"), b.Size, filepath.Base(b.Path))
	}
	return nil
}

type BackupRestoreCmd struct {
	Path string `arg:"" help:"Backup archive to restore."`
}

func (c *BackupRestoreCmd) Run(appCtx *Context) error {
	if err := appCtx.Backup.Restore(context.Background(), c.Path); err != nil {
		return err
	}
	fmt.Println("Restore complete.")
	return nil
}
