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

// Package cat implements "warcgo cat", grounded on the teacher's
// cmd/warccmd/cmd/cat: dump each record's headers (and, with --payload, its
// remaining payload bytes) to stdout.
package cat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nlevold/warcio"
)

type conf struct {
	recordCount int
	payload     bool
	strict      bool
	fileName    string
	id          []string
}

// NewCommand returns the "cat" subcommand.
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "cat <file>",
		Short: "Dump WARC records to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileName = args[0]
			sort.Strings(c.id)
			return run(c)
		},
	}

	cmd.Flags().IntVarP(&c.recordCount, "record-count", "c", 0, "maximum number of records to show (0 means all)")
	cmd.Flags().BoolVar(&c.payload, "payload", false, "also dump each record's payload")
	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "strict parsing")
	cmd.Flags().StringArrayVar(&c.id, "id", nil, "only show records whose WARC-Record-ID is in this list")

	return cmd
}

func run(c *conf) error {
	wf, err := warcio.OpenWarcFile(c.fileName, warcio.WithStrict(c.strict))
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.fileName, err)
	}
	defer wf.Close()

	ctx := context.Background()
	count := 0
	for {
		rec, err := wf.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading record %d: %v\n", count, err)
			break
		}

		if len(c.id) > 0 && !contains(c.id, rec.WarcHeaders.Get(warcio.WarcRecordID)) {
			if _, err := io.Copy(io.Discard, rec.Reader()); err != nil {
				fmt.Fprintf(os.Stderr, "error skipping payload: %v\n", err)
			}
			continue
		}

		printRecord(rec, c.payload)
		count++
		if c.recordCount > 0 && count >= c.recordCount {
			break
		}
	}
	fmt.Fprintln(os.Stderr, "Count:", count)
	return nil
}

func printRecord(rec *warcio.WarcRecord, dumpPayload bool) {
	bold := color.New(color.Bold)
	bold.Printf("offset %d\n", rec.StreamPos())
	fmt.Print(rec.String())
	fmt.Println()

	if dumpPayload {
		if _, err := io.Copy(os.Stdout, rec.Reader()); err != nil {
			fmt.Fprintf(os.Stderr, "error dumping payload: %v\n", err)
		}
		fmt.Println()
	}
}

func contains(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
