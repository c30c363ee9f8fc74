// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/0xsoniclabs/ethproof/common"
	"github.com/0xsoniclabs/ethproof/mpt"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./mpt/tool <command> <flags>

var (
	rootFlag = cli.StringFlag{
		Name:     "root",
		Usage:    "the hex-encoded 32-byte root digest to verify against",
		Required: true,
	}
	keyFlag = cli.StringFlag{
		Name:     "key",
		Usage:    "the hex-encoded key the proof is about",
		Required: true,
	}
	valueFlag = cli.StringFlag{
		Name:  "value",
		Usage: "the hex-encoded expected value; omit to verify an absence proof",
	}
)

func main() {
	app := &cli.App{
		Name:  "ethproof",
		Usage: "Merkle-Patricia-Trie proof toolbox",
		Commands: []*cli.Command{
			&verifyCmd,
			&hashCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var verifyCmd = cli.Command{
	Action:    verify,
	Name:      "verify",
	Usage:     "verifies a proof given as hex-encoded node entries, root first",
	ArgsUsage: "<proof-entry> [<proof-entry> ...]",
	Flags: []cli.Flag{
		&rootFlag,
		&keyFlag,
		&valueFlag,
	},
}

var hashCmd = cli.Command{
	Action:    hash,
	Name:      "hash",
	Usage:     "prints the Keccak-256 digest of the hex-encoded argument",
	ArgsUsage: "<data>",
}

func verify(context *cli.Context) error {
	root, err := common.HashFromString(context.String(rootFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}
	key, err := decodeHex(context.String(keyFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	var expected []byte
	if context.IsSet(valueFlag.Name) {
		expected, err = decodeHex(context.String(valueFlag.Name))
		if err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}
	}

	if context.Args().Len() == 0 {
		return fmt.Errorf("no proof entries given")
	}
	proof := make([][]byte, 0, context.Args().Len())
	for i, arg := range context.Args().Slice() {
		entry, err := decodeHex(arg)
		if err != nil {
			return fmt.Errorf("invalid proof entry %d: %w", i, err)
		}
		proof = append(proof, entry)
	}

	if err := mpt.VerifyProof(root, proof, key, expected); err != nil {
		return fmt.Errorf("proof rejected: %w", err)
	}
	fmt.Println("proof accepted")
	return nil
}

func hash(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one hex-encoded argument")
	}
	data, err := decodeHex(context.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(common.Keccak256(data))
	return nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
