package server

import (
	"math/rand"
	"regexp"
	"strings"
)

// bannedWords is matched by containment against the normalized form of
// every message, so punctuated or mixed-case obfuscations of these terms
// are caught too. Containment (not whole-word) matching is intentional:
// an innocuous longer word that normalizes to contain a banned term is
// blocked as well.
var bannedWords = []string{
	"nigger", "nigga", "n1gger", "n1gga", "nig", "nigg", "nga",
	"faggot", "fag", "f4ggot", "f4g", "fa66ot",
	"retard", "retarded", "r3tard", "r3tarded", "tard",
	"tranny", "tr4nny", "trannie",
	"chink", "ch1nk",
	"spic", "sp1c",
	"kike", "k1ke",
	"coon", "c00n", "c0on",
	"beaner", "b3aner",
	"wetback", "w3tback",
	"gook", "g00k",
	"raghead", "r4ghead",
	"towelhead",
}

var imageKeywords = map[string]string{
	"dog":     "https://raw.githubusercontent.com/Doopadroopa/retrochatemotes/refs/heads/main/2-20933_cute-puppies-png-background-havanese-dog.png",
	"cat":     "https://raw.githubusercontent.com/Doopadroopa/retrochatemotes/refs/heads/main/cat.png",
	"lol":     "https://raw.githubusercontent.com/Doopadroopa/retrochatemotes/refs/heads/main/laugh.png",
	"windows": "https://raw.githubusercontent.com/Doopadroopa/retrochatemotes/refs/heads/main/windows95box.0.png",
	"error":   "https://raw.githubusercontent.com/Doopadroopa/retrochatemotes/refs/heads/main/error.png",
	"cool":    "https://raw.githubusercontent.com/Doopadroopa/retrochatemotes/refs/heads/main/Derp-face.png",
	"fire":    "https://raw.githubusercontent.com/Doopadroopa/retrochatemotes/refs/heads/main/pixel-art-fire-icon-png.png",
}

var tipsAndJokes = []string{
	"[TIP] Use /help to see all available commands!",
	"[TIP] You can change your color with /color #RRGGBB",
	"[TIP] Try /me to perform an action!",
	"[TIP] Use /msg [username] to send a private message!",
	"[TIP] You can switch rooms with /join [room]",
	"[TIP] Your achievements are saved to your account!",
	"[TIP] Set your status with /status [Online/Away/Busy]",
	"[TIP] Type !dog, !cat, or other keywords for quick images!",
	"[TIP] Press Enter to send messages quickly!",
	"[TIP] Drag windows around to organize your screen!",
	"[JOKE] Why don't programmers like nature? It has too many bugs!",
	"[JOKE] There are only 10 types of people: those who understand binary and those who don't.",
	"[JOKE] Why did the computer go to the doctor? Because it had a virus!",
	"[JOKE] What's a computer's favorite snack? Microchips!",
	"[JOKE] How many programmers does it take to change a light bulb? None, that's a hardware problem!",
	"[JOKE] What's a programmer's favorite hangout place? Foo Bar!",
}

var retroErrors = []string{
	"A fatal exception 0E has occurred at 0028:C0011E36",
	"This program has performed an illegal operation and will be shut down",
	"RUNDLL error loading C:\\WINDOWS\\SYSTEM\\BRIDGE.DLL",
	"The system is dangerously low on resources!",
	"Cannot find KERNEL32.DLL",
	"GPF in module MSVCRT.DLL at 0137:BFF9B3BC",
	"HIMEM.SYS is missing. Do you want to continue loading Windows?",
	"Windows protection error. You need to restart your computer.",
	"Illegal operation in module USER.EXE at 0137:00004F21",
	"Not enough memory to complete this operation",
	"This program has caused a General Protection Fault in KRNL386.EXE",
}

var keywordPattern = regexp.MustCompile(`^!(\w+)$`)

// normalizeText lowers the text and strips everything outside [a-z0-9],
// the comparison form used by the content filter.
func normalizeText(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func containsBannedWord(text string) bool {
	clean := normalizeText(text)
	for _, word := range bannedWords {
		if strings.Contains(clean, normalizeText(word)) {
			return true
		}
	}

	return false
}

// matchImageKeyword reports whether the entire message is a registered
// !keyword shortcut and resolves its image URL.
func matchImageKeyword(text string) (string, string, bool) {
	m := keywordPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}

	url, ok := imageKeywords[m[1]]
	return m[1], url, ok
}

func sanitizeInput(text string) string {
	text = strings.ReplaceAll(text, "<", "")
	text = strings.ReplaceAll(text, ">", "")
	return strings.TrimSpace(text)
}

func randomTip() string {
	return tipsAndJokes[rand.Intn(len(tipsAndJokes))]
}

func randomRetroError() string {
	return retroErrors[rand.Intn(len(retroErrors))]
}
