package pnr

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// PNRLength はPNRコードの桁数
const PNRLength = 6

// alphabet は視認性の悪い文字（I, O, 0, 1）を除いた文字集合
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxAttempts は衝突時の再生成回数の上限
const maxAttempts = 20

var ErrGenerationFailed = errors.New("一意なPNRの生成に失敗しました")

// ExistsFunc は生成したコードが既に使用済みかをストレージに問い合わせる
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// GeneratePNR は6桁のPNRコードを生成する（一意性チェックなし）
func GeneratePNR() (string, error) {
	buf := make([]byte, PNRLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("乱数生成に失敗: %w", err)
	}
	var b strings.Builder
	b.Grow(PNRLength)
	for _, c := range buf {
		b.WriteByte(alphabet[int(c)%len(alphabet)])
	}
	return b.String(), nil
}

// NewUniquePNR はストレージとの照合付きで一意なPNRを生成する
func NewUniquePNR(ctx context.Context, exists ExistsFunc) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := GeneratePNR()
		if err != nil {
			return "", err
		}
		used, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("PNR重複チェックに失敗: %w", err)
		}
		if !used {
			return code, nil
		}
	}
	return "", ErrGenerationFailed
}

// GenerateTicketNumber は航空券番号を生成する（形式: TK + 8桁の16進数）
func GenerateTicketNumber() (string, error) {
	return randomHexWithPrefix("TK")
}

// GenerateBoardingPass は搭乗券番号を生成する（形式: BP + 8桁の16進数）
func GenerateBoardingPass() (string, error) {
	return randomHexWithPrefix("BP")
}

func randomHexWithPrefix(prefix string) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("乱数生成に失敗: %w", err)
	}
	return prefix + strings.ToUpper(hex.EncodeToString(buf)), nil
}
