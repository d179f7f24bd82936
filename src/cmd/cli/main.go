// One-shot mode: capture the full screen, analyze it, print the result
// to stdout, and exit. No hotkeys, no indicator.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"screen-capture-llm/src/analysis"
	"screen-capture-llm/src/capture"
	"screen-capture-llm/src/config"
	"screen-capture-llm/src/logutil"
	"screen-capture-llm/src/ocr"
	"screen-capture-llm/src/runtimeinit"
)

func main() {
	vision := flag.Bool("vision", false, "Send the image straight to the multimodal model instead of OCR-then-analyze")
	quiet := flag.Bool("quiet", false, "Print only the response text, no paths")
	flag.Parse()

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	imagePath, err := capture.FullScreen()
	if err != nil {
		log.Fatalf("capture failed: %v", err)
	}

	mode := cfg.AnalysisMode
	if *vision {
		mode = config.ModeVision
	}

	var responsePath string
	if mode == config.ModeVision {
		responsePath, err = analysis.ImageFile(imagePath)
	} else {
		var textPath string
		textPath, err = ocr.ExtractText(imagePath)
		if err == nil {
			responsePath, err = analysis.TextFile(textPath)
		}
	}
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	response, err := os.ReadFile(responsePath)
	if err != nil {
		log.Fatalf("cannot read response %s: %v", responsePath, err)
	}

	if *quiet {
		fmt.Println(string(response))
		return
	}
	fmt.Printf("image:    %s\n", imagePath)
	fmt.Printf("response: %s\n\n", responsePath)
	fmt.Println(string(response))
}
