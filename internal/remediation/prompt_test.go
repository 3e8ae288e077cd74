package remediation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(
		[]string{"MainScene not found in main.js", "Missing scripts: /game/js/ui.js"},
		"index.html",
		"/game/index.html",
		[]string{"/game/demo2/game.js", "/game/js/main.js"},
	)

	expected := header +
		"失败项：\n" +
		"- MainScene not found in main.js\n" +
		"- Missing scripts: /game/js/ui.js\n\n" +
		"index.html: /game/index.html\n" +
		"候选脚本文件：\n" +
		"- /game/demo2/game.js\n" +
		"- /game/js/main.js\n"
	assert.Equal(t, expected, prompt)
	assert.True(t, strings.HasPrefix(prompt, "请自动修复当前项目并满足自检要求。\n"))
}

func TestBuildPromptMissingEntry(t *testing.T) {
	prompt := BuildPrompt([]string{"index.html not found under /game"}, "index.html", "", nil)

	assert.Contains(t, prompt, "index.html: N/A\n")
	assert.True(t, strings.HasSuffix(prompt, "候选脚本文件：\n\n"))
}

func TestBuildPromptLabelsConfiguredEntry(t *testing.T) {
	prompt := BuildPrompt([]string{"Did not find engine script reference"}, "main.html", "/game/main.html", nil)

	assert.Contains(t, prompt, "\nmain.html: /game/main.html\n")
	assert.NotContains(t, prompt, "index.html")
}

func TestBuildPromptDeterministic(t *testing.T) {
	failures := []string{"a", "b"}
	candidates := []string{"/x.js", "/y.js"}

	first := BuildPrompt(failures, "index.html", "/index.html", candidates)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildPrompt(failures, "index.html", "/index.html", candidates))
	}
	assert.Equal(t, []string{"a", "b"}, failures, "inputs are not modified")
}
