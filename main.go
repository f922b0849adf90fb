package main

import "audio-segment-downloader/cmd"

func main() {
	cmd.Execute()
}
