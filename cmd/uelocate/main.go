// uelocate - UE Location Tool
//
// uelocate reconstructs where a 5G subscriber is, and where it has been,
// from the operational log of the AMF.
package main

import (
	"os"

	"github.com/ccollicutt/uelocate/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
