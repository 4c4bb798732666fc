// Package captions schedules narration text into timed on-screen chunks and
// picks a font able to render the text's script.
package captions
