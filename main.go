package main

import "kql-assistant-backend/internal/cli"

func main() {
	cli.Execute()
}
