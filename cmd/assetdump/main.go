// assetdump is a CLI utility for inspecting baked runtime assets.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/muldin/assetpipe/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "mesh":
		cmdMesh(args)
	case "skeleton", "skel":
		cmdSkeleton(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`assetdump - baked asset inspector

Usage:
  assetdump <command> <file>

Commands:
  mesh <file.mesh>        Show mesh asset contents
  skeleton <file.skel>    Show skeleton+animation asset contents

Examples:
  assetdump mesh hero.mesh
  assetdump skeleton hero.skel`)
}

func cmdMesh(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assetdump mesh <file.mesh>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	mesh, err := formats.DecodeMesh(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Asset:    %s\n", args[0])
	fmt.Printf("Skinned:  %v\n", mesh.HasSkeleton)
	fmt.Printf("Faces:    %d\n", len(mesh.Faces))
	fmt.Printf("Vertices: %d\n", len(mesh.Vertices))

	var min, max [3]float32
	for i, v := range mesh.Vertices {
		for c := 0; c < 3; c++ {
			if i == 0 || v.Position[c] < min[c] {
				min[c] = v.Position[c]
			}
			if i == 0 || v.Position[c] > max[c] {
				max[c] = v.Position[c]
			}
		}
	}
	if len(mesh.Vertices) > 0 {
		fmt.Printf("Bounds:   (%.3f, %.3f, %.3f) .. (%.3f, %.3f, %.3f)\n",
			min[0], min[1], min[2], max[0], max[1], max[2])
	}

	if mesh.HasSkeleton {
		used := make(map[uint8]bool)
		for _, v := range mesh.Vertices {
			for s, w := range v.JointWeights {
				if w > 0 {
					used[v.JointIndices[s]] = true
				}
			}
		}
		fmt.Printf("Joints:   %d referenced\n", len(used))
	}
}

func cmdSkeleton(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assetdump skeleton <file.skel>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	skel, err := formats.DecodeSkeleton(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Asset:      %s\n", args[0])
	fmt.Printf("Bones:      %d\n", len(skel.Bones))
	for i, b := range skel.Bones {
		if b.Parent == formats.RootParent {
			fmt.Printf("  [%d] root\n", i)
		} else {
			fmt.Printf("  [%d] parent %d\n", i, b.Parent)
		}
	}

	fmt.Printf("Animations: %d\n", len(skel.Animations))
	for _, a := range skel.Animations {
		fmt.Printf("  %-20s %d frames, %d poses\n", a.Name, a.FrameCount, len(a.Poses))
	}
}
