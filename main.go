package main

import "github.com/nikogura/job-tracker/cmd"

func main() {
	cmd.Execute()
}
