package main

//
// Interactive input
//

import "github.com/AlecAivazis/survey/v2"

// promptURL asks the user for the URL to check. Tests override it.
var promptURL = func() (string, error) {
	prompt := &survey.Input{
		Message: "Enter the URL to check for load balancing (e.g., http://example.com):",
	}
	var URL string
	err := survey.AskOne(prompt, &URL, survey.WithValidator(survey.Required))
	return URL, err
}
