package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"pipelined.dev/engine/thread"
	"pipelined.dev/engine/wav"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file.wav...]",
		Short: "Print real-time capabilities of the system and wav file properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			printSystem(w)
			for _, path := range args {
				a, err := wav.Load(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s: %d channels, %d Hz, %d bit, %v\n",
					path, len(a.Channels), a.SampleRate, a.BitDepth, a.SampleRate.DurationOf(a.Length()))
			}
			return nil
		},
	}
}

func printSystem(w io.Writer) {
	fmt.Fprintf(w, "os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "cpus: %d\n", runtime.NumCPU())
	fmt.Fprintf(w, "flush to zero: %t\n", thread.FlushToZero())
	if name, err := thread.Name(); err == nil {
		fmt.Fprintf(w, "thread name: %s\n", name)
	}
}
