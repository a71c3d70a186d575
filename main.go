package main

import "student-mess-api/cmd"

func main() {
	cmd.Execute()
}
