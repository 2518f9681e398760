// Package main 提供 segreplay 命令行工具：回放 YAML 场景并校验线段树结果。
package main

import (
	"fmt"
	"os"
)

// version 由构建时 -ldflags "-X main.version=..." 注入。
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
