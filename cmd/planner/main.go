package main

import "github.com/soudousya-lab/weekday-planner/internal/cli"

func main() {
	cli.Execute()
}
