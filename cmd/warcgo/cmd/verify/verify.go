/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package verify implements "warcgo verify": it walks every record in a
// file, checks WARC-Block-Digest and, where present, WARC-Payload-Digest,
// and reports any record whose content does not match. Not present in the
// teacher's own CLI; built in the same conf/NewCommand/RunE idiom as its
// cat and ls subcommands, since block/payload digest verification is a
// first-class WarcRecord operation that has no CLI surface there.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nlevold/warcio"
)

type conf struct {
	strict   bool
	fileName string
}

// NewCommand returns the "verify" subcommand.
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify block and payload digests of every record in a WARC file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileName = args[0]
			return run(c)
		},
	}

	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "strict parsing")

	return cmd
}

func run(c *conf) error {
	wf, err := warcio.OpenWarcFile(c.fileName, warcio.WithStrict(c.strict))
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.fileName, err)
	}
	defer wf.Close()

	ctx := context.Background()
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	count, failed := 0, 0
	for {
		rec, err := wf.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading record %d: %v\n", count, err)
			failed++
			break
		}
		count++

		id := rec.WarcHeaders.Get(warcio.WarcRecordID)
		hasBlockDigest := rec.WarcHeaders.Has(warcio.WarcBlockDigest)
		hasPayloadDigest := rec.HTTPParsed() && rec.WarcHeaders.Has(warcio.WarcPayloadDigest)

		blockOK := !hasBlockDigest || rec.VerifyBlockDigest()
		payloadOK := !hasPayloadDigest || rec.VerifyPayloadDigest()

		// Drain whatever rec.Reader still holds: the buffer a digest check
		// rebound it to, or the unread payload when no digest was checked.
		// The iterator skips payload left unread on its own either way.
		if _, err := io.Copy(io.Discard, rec.Reader()); err != nil {
			fmt.Fprintf(os.Stderr, "error draining record %s: %v\n", id, err)
		}

		switch {
		case !hasBlockDigest && !hasPayloadDigest:
			fmt.Printf("%s\t%s\tno digest present\n", id, rec.Type())
		case blockOK && payloadOK:
			green.Printf("%s\t%s\tOK\n", id, rec.Type())
		default:
			failed++
			red.Printf("%s\t%s\tFAILED (block=%v payload=%v)\n", id, rec.Type(), blockOK, payloadOK)
		}
	}

	fmt.Fprintf(os.Stderr, "Count: %d, Failed: %d\n", count, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d records failed digest verification", failed, count)
	}
	return nil
}
