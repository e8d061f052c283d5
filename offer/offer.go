// Package offer implements file-vs-directory offer dispatch. It stats
// the local path, builds the matching Offer message, and on receive
// unzips a directory offer into its destination preserving file modes.
// Destination writes go through internal/pipeline.Sink, a plain
// temp-then-rename sink.
package offer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vu3rdd/wormhole-transit/internal/netutil"
	"github.com/vu3rdd/wormhole-transit/internal/pipeline"
	"github.com/vu3rdd/wormhole-transit/internal/tcrypto"
	"github.com/vu3rdd/wormhole-transit/transitmsg"
	"github.com/vu3rdd/wormhole-transit/wormhole"
)

// SendPath stats path, sends the matching file or directory Offer over
// ec, waits for the peer's file_ack, and streams the bytes through ep.
// For a directory, archiver produces the deflated zip offered and
// streamed in its place.
func SendPath(ctx context.Context, ec wormhole.EncryptedConnection, ep *netutil.Endpoint, sk tcrypto.Subkeys, path string, archiver wormhole.Archiver) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("offer: stat %s: %w", path, err)
	}

	var src *os.File
	var o transitmsg.Offer

	if info.IsDir() {
		archivePath, numFiles, totalBytes, err := archiver.ZipDir(path)
		if err != nil {
			return fmt.Errorf("offer: zip directory: %w", err)
		}
		defer os.Remove(archivePath)

		zipInfo, err := os.Stat(archivePath)
		if err != nil {
			return fmt.Errorf("offer: stat archive: %w", err)
		}
		src, err = os.Open(archivePath)
		if err != nil {
			return fmt.Errorf("offer: open archive: %w", err)
		}
		o = transitmsg.Offer{Directory: &transitmsg.DirectoryOffer{
			Mode:     "zipfile/deflated",
			Dirname:  filepath.Base(filepath.Clean(path)),
			Zipsize:  zipInfo.Size(),
			Numbytes: totalBytes,
			Numfiles: numFiles,
		}}
	} else {
		src, err = os.Open(path)
		if err != nil {
			return fmt.Errorf("offer: open %s: %w", path, err)
		}
		o = transitmsg.Offer{File: &transitmsg.FileOffer{
			Filename: filepath.Base(path),
			Filesize: info.Size(),
		}}
	}
	defer src.Close()

	payload, err := transitmsg.EncodeOffer(o)
	if err != nil {
		return err
	}
	if err := ec.SendPlain(ctx, payload); err != nil {
		return fmt.Errorf("offer: send offer: %w", err)
	}

	if err := awaitFileAck(ctx, ec); err != nil {
		return err
	}

	return pipeline.SendFile(ep, sk, src)
}

func awaitFileAck(ctx context.Context, ec wormhole.EncryptedConnection) error {
	raw, err := ec.ReceivePlain(ctx)
	if err != nil {
		return fmt.Errorf("offer: await ack: %w", err)
	}
	msg, err := transitmsg.Decode(raw)
	if err != nil {
		return err
	}
	if msg.Answer == nil || msg.Answer.FileAck != "ok" {
		return ErrUnexpectedAnswer
	}
	return nil
}

// ReceiveOffer reads one Offer over ec, acknowledges it, and streams its
// bytes off ep into destDir. A file offer lands directly at its
// destination path; a directory offer is received
// into a temp zip and then unzipped via archiver, restoring file modes
// from the zip's external attributes. It returns the final path written.
func ReceiveOffer(ctx context.Context, ec wormhole.EncryptedConnection, ep *netutil.Endpoint, sk tcrypto.Subkeys, destDir string, archiver wormhole.Archiver) (string, error) {
	raw, err := ec.ReceivePlain(ctx)
	if err != nil {
		return "", fmt.Errorf("offer: receive offer: %w", err)
	}
	o, err := transitmsg.DecodeOffer(raw)
	if err != nil {
		return "", err
	}

	ackPayload, err := transitmsg.Encode(transitmsg.Message{
		Answer: &transitmsg.AnswerPayload{FileAck: "ok"},
	})
	if err != nil {
		return "", err
	}
	if err := ec.SendPlain(ctx, ackPayload); err != nil {
		return "", fmt.Errorf("offer: send ack: %w", err)
	}

	switch {
	case o.Directory != nil:
		return receiveDirectory(ep, sk, destDir, o.Directory, archiver)
	case o.File != nil:
		return receiveFile(ep, sk, destDir, o.File)
	default:
		return "", ErrUnexpectedAnswer
	}
}

func receiveFile(ep *netutil.Endpoint, sk tcrypto.Subkeys, destDir string, fo *transitmsg.FileOffer) (string, error) {
	sink, err := pipeline.NewSink(destDir, filepath.Base(fo.Filename))
	if err != nil {
		return "", err
	}
	if err := pipeline.ReceiveFile(ep, sk, sink, fo.Filesize); err != nil {
		sink.Discard()
		return "", err
	}
	if err := sink.Commit(); err != nil {
		return "", err
	}
	return sink.Name(), nil
}

func receiveDirectory(ep *netutil.Endpoint, sk tcrypto.Subkeys, destDir string, do *transitmsg.DirectoryOffer, archiver wormhole.Archiver) (string, error) {
	sink, err := pipeline.NewSink(destDir, filepath.Base(do.Dirname)+".zip")
	if err != nil {
		return "", err
	}
	if err := pipeline.ReceiveFile(ep, sk, sink, do.Zipsize); err != nil {
		sink.Discard()
		return "", err
	}
	if err := sink.Commit(); err != nil {
		return "", err
	}
	defer os.Remove(sink.Name())

	finalDir := filepath.Join(destDir, filepath.Base(do.Dirname))
	if err := archiver.UnzipInto(finalDir, sink.Name()); err != nil {
		return "", fmt.Errorf("offer: unzip: %w", err)
	}
	return finalDir, nil
}
