package registry

import (
	"bytes"
	"encoding/json"
	"sort"

	"vigcrack/pkg/contract"
	fjson "vigcrack/plugins/formatter/jsonfmt"
	ftext "vigcrack/plugins/formatter/text"
	rfs "vigcrack/plugins/reader/filesystem"
	rprompt "vigcrack/plugins/reader/prompt"
	sletters "vigcrack/plugins/sanitizer/letters"
	sraw "vigcrack/plugins/sanitizer/raw"
	wfs "vigcrack/plugins/writer/filesystem"
	wstdout "vigcrack/plugins/writer/stdout"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewSanitizer 工厂签名：接收原样 JSON Options。
type NewSanitizer func(raw json.RawMessage) (contract.Sanitizer, error)

// NewFormatter 工厂签名：接收原样 JSON Options。
type NewFormatter func(raw json.RawMessage) (contract.Formatter, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 文件/目录/STDIN
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
	// prompt: 交互式单行输入
	"prompt": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rprompt.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rprompt.New(&opts), nil
	},
}

// Sanitizer 工厂注册表。
var Sanitizer = map[string]NewSanitizer{
	"letters": func(raw json.RawMessage) (contract.Sanitizer, error) {
		var opts sletters.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return sletters.New(&opts), nil
	},
	"raw": func(raw json.RawMessage) (contract.Sanitizer, error) {
		var opts sraw.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return sraw.New(&opts), nil
	},
}

// Formatter 工厂注册表。
var Formatter = map[string]NewFormatter{
	"text": func(raw json.RawMessage) (contract.Formatter, error) {
		var opts ftext.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ftext.New(&opts), nil
	},
	"json": func(raw json.RawMessage) (contract.Formatter, error) {
		var opts fjson.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return fjson.New(&opts), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	"stdout": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wstdout.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wstdout.New(&opts), nil
	},
	// fs: 每个输入一个文件（原子替换可配置）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
}

// Names 返回注册表键的有序列表（用于帮助与报错信息）。
func Names[F any](m map[string]F) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
