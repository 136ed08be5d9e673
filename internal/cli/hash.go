package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/config"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/crypto"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/merkle"
)

func (c *command) initHashCmd() {
	const optionNameTree = "tree"

	cmd := &cobra.Command{
		Use:   "hash <file>...",
		Short: "Print the merkle root of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := crypto.NewHasher(c.config.GetString(config.OptionHashAlgorithm))
			if err != nil {
				return err
			}
			chunkSize := c.config.GetInt(config.OptionChunkSize)
			workers := c.config.GetInt(config.OptionWorkers)
			printTree, err := cmd.Flags().GetBool(optionNameTree)
			if err != nil {
				return fmt.Errorf("get tree flag: %w", err)
			}
			logger, err := c.newLogger(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range args {
				f, err := c.fs.Open(name)
				if err != nil {
					return fmt.Errorf("open %s: %w", name, err)
				}
				tree, size, err := merkle.BuildFromReader(cmd.Context(), hasher, f, chunkSize, workers)
				f.Close()
				if err != nil {
					return fmt.Errorf("hash %s: %w", name, err)
				}
				logger.Debugf("hashed %s: %d bytes, %d nodes", name, size, tree.Len())

				if printTree {
					for _, d := range tree {
						fmt.Fprintln(out, d)
					}
					continue
				}
				fmt.Fprintf(out, "%s  %s\n", tree.Root(), name)
			}
			return nil
		},
	}

	d := config.Default()
	cmd.Flags().Int(config.OptionChunkSize, d.ChunkSize, "chunk size in bytes")
	cmd.Flags().String(config.OptionHashAlgorithm, d.HashAlgorithm, fmt.Sprintf("hash algorithm, one of %v", crypto.Algorithms()))
	cmd.Flags().Int(config.OptionWorkers, d.Workers, "leaf hashing workers, 0 uses GOMAXPROCS")
	cmd.Flags().Bool(optionNameTree, false, "print every tree node, leaves first and root last")

	c.root.AddCommand(cmd)
}
