package shared

import "fmt"

// Field violation messages.
const (
	MsgRequired        = "この項目は必須です。"
	MsgBlank           = "この項目は空にできません。"
	MsgNull            = "この項目はnullにできません。"
	MsgInvalidString   = "有効な文字列を入力してください。"
	MsgInvalidEmail    = "有効なメールアドレスを入力してください。"
	MsgInvalidURL      = "有効なURLを入力してください。"
	MsgInvalidNumber   = "有効な数値を入力してください。"
	MsgInvalidInteger  = "有効な整数を入力してください。"
	MsgInvalidImage    = "有効な画像をアップロードしてください。アップロードしたファイルは画像でないか、または壊れています。"
	MsgNotAFile        = "送信されたデータはファイルではありません。フォームのエンコーディングタイプを確認してください。"
	MsgInvalidPage     = "不正なページです。"
	MsgEmptyIDs        = "削除対象のIDが指定されていません。"
	MsgInvalidIDs      = "IDは正の整数のリストで指定してください。"
	MsgMissingIDs      = "存在しないIDが含まれています。"
	MsgBulkDeleteError = "削除処理中にエラーが発生しました: "
)

// MsgMaxLength reports a string longer than n characters.
func MsgMaxLength(n int) string {
	return fmt.Sprintf("この項目が%d文字より長くならないようにしてください。", n)
}

// MsgMinValue reports a value below limit.
func MsgMinValue(limit string) string {
	return fmt.Sprintf("この値は%s以上にしてください。", limit)
}

// MsgMaxValue reports a value above limit.
func MsgMaxValue(limit string) string {
	return fmt.Sprintf("この値は%s以下にしてください。", limit)
}

// MsgMaxDigits reports a decimal with too many digits.
func MsgMaxDigits(n int) string {
	return fmt.Sprintf("合計で最大%d桁以下になるようにしてください。", n)
}

// MsgMaxDecimalPlaces reports a decimal with too many fractional digits.
func MsgMaxDecimalPlaces(n int) string {
	return fmt.Sprintf("小数点以下の桁数を%dを超えないようにしてください。", n)
}

// MsgMaxWholeDigits reports a decimal with too many integer digits.
func MsgMaxWholeDigits(n int) string {
	return fmt.Sprintf("小数点より前の桁数を%dを超えないようにしてください。", n)
}

// MsgInvalidChoice reports a value outside the allowed set.
func MsgInvalidChoice(v string) string {
	return fmt.Sprintf("\"%s\"は有効な選択肢ではありません。", v)
}

// MsgIncorrectPKType reports a reference that is not a primary key.
func MsgIncorrectPKType(typeName string) string {
	return fmt.Sprintf("不正な型です。pk値が期待されますが、%sが送られました。", typeName)
}

// MsgPKDoesNotExist reports a reference to a missing record.
func MsgPKDoesNotExist(pk string) string {
	return fmt.Sprintf("主キー \"%s\" は不正です - データが存在しません。", pk)
}

// MsgBulkDeleted reports a successful bulk delete.
func MsgBulkDeleted(n int) string {
	return fmt.Sprintf("%d件のデータを削除しました。", n)
}
