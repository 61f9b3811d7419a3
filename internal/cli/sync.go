package cli

import (
	"context"
	"fmt"
)

type SyncCmd struct {
	Now    SyncNowCmd    `cmd:"" help:"Pull the remote snapshot now." default:"1"`
	Status SyncStatusCmd `cmd:"" help:"Show connectivity and last sync time."`
}

type SyncNowCmd struct{}

func (c *SyncNowCmd) Run(appCtx *Context) error {
	ctx := context.Background()

	habits, synced := appCtx.Sync.Resync(ctx)
	if !synced {
		fmt.Println("Remote unavailable, keeping local data.")
		return nil
	}
	fmt.Printf("Synced %d habits from remote.\n", len(habits))
	return nil
}

type SyncStatusCmd struct{}

func (c *SyncStatusCmd) Run(appCtx *Context) error {
	ctx := context.Background()

	if appCtx.Oracle.Online(ctx) {
		fmt.Println("Connectivity: online")
	} else {
		fmt.Println("Connectivity: offline")
	}

	settings := appCtx.Store.Settings(ctx)
	if settings.LastSyncTime == nil {
		fmt.Println("Last sync:    never")
	} else {
		fmt.Printf("Last sync:    %s\n", settings.LastSyncTime.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
