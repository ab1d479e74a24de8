package main

import "github.com/sophia-wwww/accountd/cmd"

func main() {
	cmd.Execute()
}
