package main

import "brightlend/internal/app"

func main() {
	app.Run()
}
