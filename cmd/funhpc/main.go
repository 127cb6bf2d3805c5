// Command funhpc is a thin process entry point: it owns no flags of
// its own (CORE §6), forwarding every argument it does not recognize
// straight through to funhpc_main. The actual computation below is a
// small demo exercising the container vocabulary end to end; real
// programs link against pkg/funhpc and pkg/container/pkg/nested/pkg/grid
// directly instead of this binary.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"funhpc/pkg/container"
	"funhpc/pkg/funhpc"
	"funhpc/pkg/rptr"
)

func main() {
	root := &cobra.Command{
		Use:                "funhpc [args...]",
		Short:              "run the funhpc_main entry point",
		DisableFlagParsing: true,
		Run: func(cmd *cobra.Command, args []string) {
			funhpc.Run(funhpcMain, args)
		},
	}
	_ = root.Execute()
}

func funhpcMain(rt *rptr.Runtime, args []string) int {
	xs := container.IotaMapVector(func(i int) int { return i }, 0, 10)
	ys := container.FmapVector(func(v int) int { return v * v }, xs)
	sum := container.FoldMapVector(func(v int) int { return v }, func(acc, v int) int { return acc + v }, 0, ys)
	fmt.Printf("funhpc[%d]: sum of squares 0..9 = %d\n", rt.Rank(), sum)
	return 0
}
