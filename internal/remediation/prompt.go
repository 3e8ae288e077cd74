// Package remediation composes the fix request sent to a coding agent when
// the self-test fails.
package remediation

import "strings"

// NotAvailable stands in for the entry path when no entry file was found.
const NotAvailable = "N/A"

// header is emitted verbatim at the top of every prompt.
const header = "请自动修复当前项目并满足自检要求。\n" +
	"要求：\n" +
	"1) 修复失败项；\n" +
	"2) 只做最小必要修改；\n" +
	"3) 修复后重新运行 `check-game` 并确保 Self-test passed；\n" +
	"4) 输出修改文件与原因。\n\n"

// BuildPrompt renders the remediation prompt. failures keep checklist order;
// candidates are rendered in the order given. entryName labels the entry
// line, and an empty entryPath renders as NotAvailable. The output depends
// only on the arguments.
func BuildPrompt(failures []string, entryName, entryPath string, candidates []string) string {
	if entryPath == "" {
		entryPath = NotAvailable
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("失败项：\n")
	b.WriteString(bullets(failures))
	b.WriteString("\n\n")
	b.WriteString(entryName + ": " + entryPath + "\n")
	b.WriteString("候选脚本文件：\n")
	b.WriteString(bullets(candidates))
	b.WriteString("\n")
	return b.String()
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
