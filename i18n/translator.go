package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "type" or "option").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "unknown_key":
			return "未知のキーです"
		case "duplicate_key":
			return "キーが重複しています"
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "too_small":
			return "小さすぎます"
		case "too_big":
			return "大きすぎます"
		case "pattern":
			return "パターンに一致しません"
		case "invalid_enum":
			return "列挙値が不正です"
		case "invalid_format":
			return "書式が不正です"
		case "unknown_choice_tag":
			return "選択タグが不正です"
		case "malformed_option":
			return "オプションが不正です"
		case "duplicate_option":
			return "オプションが重複しています"
		case "duplicate_type":
			return "型名が重複しています"
		case "duplicate_field":
			return "フィールドが重複しています"
		case "unresolved_type":
			return "型を解決できません"
		case "unknown_namespace":
			return "名前空間が不明です"
		case "invalid_root":
			return "ルート型が不正です"
		case "invalid_discriminator":
			return "判別フィールドが不正です"
		case "invalid_option":
			return "この基本型では使えないオプションです"
		case "invalid_base_type":
			return "基本型が不正です"
		case "invalid_type_name":
			return "型名が不正です"
		case "invalid_field_name":
			return "フィールド名が不正です"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required field missing"
		case "unknown_key":
			return "unknown key"
		case "duplicate_key":
			return "duplicate key"
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "too_small":
			return "too small"
		case "too_big":
			return "too big"
		case "pattern":
			return "pattern mismatch"
		case "invalid_enum":
			return "unknown enumerated id"
		case "invalid_format":
			return "invalid format"
		case "unknown_choice_tag":
			return "unknown choice tag"
		case "malformed_option":
			return "malformed option"
		case "duplicate_option":
			return "duplicate option"
		case "duplicate_type":
			return "duplicate type name"
		case "duplicate_field":
			return "duplicate field"
		case "unresolved_type":
			return "unresolved type reference"
		case "unknown_namespace":
			return "unknown namespace prefix"
		case "invalid_root":
			return "root is not a defined type"
		case "invalid_discriminator":
			return "invalid discriminator"
		case "invalid_option":
			return "option not allowed for this base type"
		case "invalid_base_type":
			return "invalid base type"
		case "invalid_type_name":
			return "invalid type name"
		case "invalid_field_name":
			return "invalid field name"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
