package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vu3rdd/wormhole-transit/offer"
	"github.com/vu3rdd/wormhole-transit/transit"
	"github.com/vu3rdd/wormhole-transit/wormhole"
)

// runDemo negotiates a Transit connection between two in-process sides
// sharing one wormhole.LoopbackConnection pair and transfers path into
// destDir, printing progress the way cmd/dfs narrates its store/retrieve
// run with bracketed "[role] ..." lines.
func runDemo(path, destDir string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	senderConn, receiverConn, err := wormhole.NewLoopbackPair()
	if err != nil {
		return "", fmt.Errorf("transit-demo: generate shared key: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	var sendErr, recvErr error
	var destPath string

	go func() {
		defer wg.Done()
		fmt.Printf("[sender] offering %s\n", path)
		sendErr = transit.SendFile(ctx, senderConn, path, offer.ZipArchiver{}, transit.Config{})
		if sendErr == nil {
			fmt.Println("[sender] transfer complete")
		}
	}()
	go func() {
		defer wg.Done()
		fmt.Printf("[receiver] waiting for offer, writing into %s\n", destDir)
		destPath, recvErr = transit.ReceiveFile(ctx, receiverConn, destDir, offer.ZipArchiver{}, transit.Config{})
		if recvErr == nil {
			fmt.Printf("[receiver] saved to %s\n", destPath)
		}
	}()
	wg.Wait()

	if sendErr != nil {
		return "", fmt.Errorf("transit-demo: send: %w", sendErr)
	}
	if recvErr != nil {
		return "", fmt.Errorf("transit-demo: receive: %w", recvErr)
	}
	return destPath, nil
}
