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

// Package ls implements "warcgo ls", grounded on the teacher's
// cmd/warccmd/cmd/ls: a one-line-per-record listing of offset, ID, type and
// target URI, without materializing payloads.
package ls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nlevold/warcio"
)

type conf struct {
	strict   bool
	fileName string
}

// NewCommand returns the "ls" subcommand.
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "ls <file>",
		Short: "List WARC records in a file",
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
	wf, err := warcio.OpenWarcFile(c.fileName, warcio.WithStrict(c.strict), warcio.WithParseHTTP(false))
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

		fmt.Printf("%d\t%s\t%s\t%s\n",
			rec.StreamPos(),
			rec.WarcHeaders.Get(warcio.WarcRecordID),
			rec.Type(),
			rec.WarcHeaders.Get(warcio.WarcTargetURI))
		count++
	}
	fmt.Fprintln(os.Stderr, "Count:", count)
	return nil
}
