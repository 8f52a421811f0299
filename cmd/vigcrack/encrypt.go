package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode"

	"github.com/spf13/cobra"

	"vigcrack/pkg/contract"
	"vigcrack/pkg/cracker"
	"vigcrack/pkg/language"
	"vigcrack/plugins/sanitizer/letters"
)

var stdin io.Reader = os.Stdin

// newEncryptCmd: 用给定密钥生成练习密文（明文先转大写；--strip 时仅保留字母表内字符）。
func newEncryptCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		key   string
		lang  string
		strip bool
	)
	cmd := &cobra.Command{
		Use:   "encrypt --key KEY [file|-]",
		Short: "Encrypt plaintext with a repeating Vigenère key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := language.Parse(lang)
			if err != nil {
				fmt.Fprintf(stderr, "参数错误: %v\n", err)
				return exitWith(exitConfig, err)
			}
			if l == language.Unknown {
				l = language.English
			}
			p, err := language.DefaultTable().Profile(l)
			if err != nil {
				fmt.Fprintf(stderr, "参数错误: %v\n", err)
				return exitWith(exitConfig, err)
			}

			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			text, err := readPlaintext(cmd, src)
			if err != nil {
				fmt.Fprintf(stderr, "读取失败: %v\n", err)
				return exitWith(exitInput, err)
			}
			plain := []rune(strings.ToUpper(text))
			if strip {
				kept := plain[:0]
				for _, r := range plain {
					if p.Contains(r) {
						kept = append(kept, r)
					}
				}
				plain = kept
			}
			out, err := cracker.Encrypt(plain, strings.ToUpper(key), p)
			if err != nil {
				fmt.Fprintf(stderr, "参数错误: %v\n", err)
				return exitWith(exitConfig, err)
			}
			s := string(out)
			if !strings.HasSuffix(s, "\n") {
				s += "\n"
			}
			_, err = io.WriteString(stdout, s)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "密钥（须由所选语言字母表字符构成）")
	cmd.Flags().StringVar(&lang, "lang", "english", "字母表：english|spanish|french")
	cmd.Flags().BoolVar(&strip, "strip", false, "仅保留字母表内字符（去除空格与标点）")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func readPlaintext(cmd *cobra.Command, src string) (string, error) {
	var r io.Reader = stdin
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return "", fmt.Errorf("%w: %w", contract.ErrInput, err)
		}
		defer f.Close()
		r = f
	}
	b, err := letters.ReadLimited(cmd.Context(), contract.FileID(src), r, letters.DefaultMaxBytes)
	if err != nil {
		return "", err
	}
	if strings.IndexFunc(string(b), unicode.IsLetter) < 0 {
		return "", fmt.Errorf("%w: %s contains no letters", contract.ErrInput, src)
	}
	return string(b), nil
}

// newLanguagesCmd 列出内置语言档案。
func newLanguagesCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List built-in language profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			common := map[language.Language]string{}
			for _, r := range language.DefaultRules() {
				common[r.Lang] = r.Common
			}
			tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LANGUAGE\tSIZE\tALPHABET\tCOMMON")
			t := language.DefaultTable()
			for _, l := range t.Languages() {
				p, err := t.Profile(l)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", strings.ToLower(l.String()), p.Size(), p.Alphabet(), common[l])
			}
			return tw.Flush()
		},
	}
}
