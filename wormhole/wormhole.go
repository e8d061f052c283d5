// Package wormhole names the external collaborators Transit consumes but
// does not implement: the Wormhole rendezvous/mailbox client's encrypted
// messaging channel, and a directory archiver. Both are out of scope for
// this module; they are represented as plain interfaces, the way a
// transport layer isolates a Peer/Transport interface from its one
// concrete connection implementation.
package wormhole

import "context"

// EncryptedConnection is the PAKE-established messaging channel Transit
// negotiation messages travel over. A real implementation lives in the
// Wormhole client (mailbox protocol, out of scope here); LoopbackConnection
// below is a test double.
type EncryptedConnection interface {
	SendPlain(ctx context.Context, msg []byte) error
	ReceivePlain(ctx context.Context) ([]byte, error)
	SharedKey() [32]byte
}

// Archiver produces and extracts the deflated zip archives used for
// directory offers. A real implementation wraps
// archive/zip (see offer.ZipArchiver); this interface exists so offer
// handling stays decoupled from one concrete archive format.
type Archiver interface {
	ZipDir(srcDir string) (archivePath string, numFiles int, totalBytes int64, err error)
	UnzipInto(destDir, archivePath string) error
}
