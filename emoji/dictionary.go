// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package emoji

// Dictionary maps standard emoji shortcodes to their unicode
// characters. Consulted when a shortcode does not match any custom
// emoji in the Registry; shortcodes found in neither render literally.
//
// This is a working subset of the common shortcode set, not an
// exhaustive one.
var Dictionary = map[string]string{
	"smile":             "\U0001F604",
	"grin":              "\U0001F600",
	"grinning":          "\U0001F600",
	"joy":               "\U0001F602",
	"rofl":              "\U0001F923",
	"slight_smile":      "\U0001F642",
	"upside_down":       "\U0001F643",
	"wink":              "\U0001F609",
	"blush":             "\U0001F60A",
	"heart_eyes":        "\U0001F60D",
	"smirk":             "\U0001F60F",
	"thinking":          "\U0001F914",
	"neutral_face":      "\U0001F610",
	"expressionless":    "\U0001F611",
	"rolling_eyes":      "\U0001F644",
	"grimacing":         "\U0001F62C",
	"relieved":          "\U0001F60C",
	"pensive":           "\U0001F614",
	"sleeping":          "\U0001F634",
	"sunglasses":        "\U0001F60E",
	"confused":          "\U0001F615",
	"worried":           "\U0001F61F",
	"frowning":          "\U0001F626",
	"cry":               "\U0001F622",
	"sob":               "\U0001F62D",
	"scream":            "\U0001F631",
	"angry":             "\U0001F620",
	"rage":              "\U0001F621",
	"skull":             "\U0001F480",
	"ghost":             "\U0001F47B",
	"robot":             "\U0001F916",
	"cat":               "\U0001F431",
	"dog":               "\U0001F436",
	"fox":               "\U0001F98A",
	"crab":              "\U0001F980",
	"heart":             "❤️",
	"broken_heart":      "\U0001F494",
	"sparkling_heart":   "\U0001F496",
	"fire":              "\U0001F525",
	"sparkles":          "✨",
	"star":              "⭐",
	"tada":              "\U0001F389",
	"confetti_ball":     "\U0001F38A",
	"rocket":            "\U0001F680",
	"eyes":              "\U0001F440",
	"wave":              "\U0001F44B",
	"clap":              "\U0001F44F",
	"pray":              "\U0001F64F",
	"muscle":            "\U0001F4AA",
	"thumbsup":          "\U0001F44D",
	"thumbsdown":        "\U0001F44E",
	"ok_hand":           "\U0001F44C",
	"point_up":          "☝️",
	"point_right":       "\U0001F449",
	"handshake":         "\U0001F91D",
	"shrug":             "\U0001F937",
	"facepalm":          "\U0001F926",
	"check":             "✔️",
	"white_check_mark":  "✅",
	"x":                 "❌",
	"warning":           "⚠️",
	"question":          "❓",
	"exclamation":       "❗",
	"zzz":               "\U0001F4A4",
	"bulb":              "\U0001F4A1",
	"bug":               "\U0001F41B",
	"wrench":            "\U0001F527",
	"hammer":            "\U0001F528",
	"gear":              "⚙️",
	"lock":              "\U0001F512",
	"unlock":            "\U0001F513",
	"key":               "\U0001F511",
	"mag":               "\U0001F50D",
	"link":              "\U0001F517",
	"pushpin":           "\U0001F4CC",
	"memo":              "\U0001F4DD",
	"book":              "\U0001F4D6",
	"envelope":          "✉️",
	"inbox_tray":        "\U0001F4E5",
	"outbox_tray":       "\U0001F4E4",
	"bell":              "\U0001F514",
	"no_bell":           "\U0001F515",
	"hourglass":         "⌛",
	"clock":             "\U0001F550",
	"calendar":          "\U0001F4C5",
	"chart_increasing":  "\U0001F4C8",
	"chart_decreasing":  "\U0001F4C9",
	"moneybag":          "\U0001F4B0",
	"gift":              "\U0001F381",
	"pizza":             "\U0001F355",
	"coffee":            "☕",
	"beer":              "\U0001F37A",
	"cake":              "\U0001F370",
	"sun":               "☀️",
	"moon":              "\U0001F319",
	"cloud":             "☁️",
	"rain":              "\U0001F327️",
	"snowflake":         "❄️",
	"zap":               "⚡",
	"rainbow":           "\U0001F308",
	"earth":             "\U0001F30D",
	"100":               "\U0001F4AF",
}
