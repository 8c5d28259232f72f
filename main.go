// ./main.go
package main

import (
	"github.com/xkilldash9x/capsule-browser/cmd"
)

func main() {
	cmd.Execute()
}
