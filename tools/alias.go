package tools

import "fmt"

var (
	sprintf = fmt.Sprintf
)
