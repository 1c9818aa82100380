// Package fare は乗車距離から運賃を算出する。
package fare

// RatePerKm は1kmあたりの運賃。プロセス全体で共通の定数。
const RatePerKm = 1.5

// Compute は距離（km）に対する運賃を返す。
// 入力の妥当性（有限の正数）は呼び出し側で検証する。
func Compute(distanceKm float64) float64 {
	return distanceKm * RatePerKm
}
