// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Lmicreset resets the project configuration header of the MCCI LoRaWAN LMIC
library before a PlatformIO build.

If the header

	.pio/libdeps/heltec_wifi_lora_32/MCCI LoRaWAN LMIC library/project_config/lmic_project_config.h

exists, it is truncated and replaced with a single placeholder comment. The
library is configured through build_flags in platformio.ini instead. If the
header doesn't exist, a notice is printed and nothing is created.

Run it from the project directory as a pre-action hook. It takes no
arguments. The -project, -env and -path flags point it elsewhere, and -dry
reports what would be overwritten without touching the file.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/lmicreset/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
