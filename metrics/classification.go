// Package metrics は分類モデルの評価指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// logLossEps はBinaryLogLossで確率をクリップする幅
const logLossEps = 1e-15

// Average は多出力のROC-AUCの集約方法
type Average string

const (
	// Macro は列ごとのAUCの単純平均
	Macro Average = "macro"
	// None は列ごとのAUCをそのまま返す
	None Average = "none"
)

// validatePair は二つのベクトルが空でなく同じ長さであることを検証する
func validatePair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// checkBinary はラベルが0か1のみであることを検証し、正例の数を返す
func checkBinary(op string, yTrue *mat.VecDense) (int, error) {
	nPos := 0
	for i := 0; i < yTrue.Len(); i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
		default:
			return 0, errors.NewValueError(op, "labels must be 0 or 1")
		}
	}
	return nPos, nil
}

func checkFinite(op string, v *mat.VecDense) error {
	for i := 0; i < v.Len(); i++ {
		if x := v.AtVec(i); math.IsNaN(x) || math.IsInf(x, 0) {
			return errors.NewValueError(op, "input contains NaN or infinity")
		}
	}
	return nil
}

// AUC はROC曲線下面積を順位（Mann-Whitney U）から計算する
// 同順位のスコアには平均順位を与えるため、全て同じスコアなら0.5になる。
// 片方のクラスしか存在しない場合は0.5を返し、UndefinedMetricWarningを発生させる。
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := validatePair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	nPos, err := checkBinary("AUC", yTrue)
	if err != nil {
		return 0, err
	}
	if err := checkFinite("AUC", yScore); err != nil {
		return 0, err
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC",
			"only one class present in y_true, ROC AUC is not defined", 0.5))
		return 0.5, nil
	}

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		scores[i] = yScore.AtVec(i)
	}
	order := make([]int, n)
	floats.Argsort(scores, order)

	// 正例の順位和（同順位は平均順位）
	rankSumPos := 0.0
	for i := 0; i < n; {
		j := i
		for j < n && scores[j] == scores[i] {
			j++
		}
		midrank := float64(i+j+1) / 2 // 1始まりの順位 i+1..j の平均
		for k := i; k < j; k++ {
			if yTrue.AtVec(order[k]) == 1 {
				rankSumPos += midrank
			}
		}
		i = j
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// AUCMatrix は行列形式の入力に対してAUCを計算する（先頭列を使用）
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	if yTrue == nil || yScore == nil {
		return 0, errors.NewValueError("AUCMatrix", "nil matrix")
	}
	yt, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	ys, err := firstColumn("AUCMatrix", yScore)
	if err != nil {
		return 0, err
	}
	return AUC(yt, ys)
}

func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, m)), nil
}

// ROCCurve は閾値を降順に並べたROC曲線を返す
// 先頭は閾値+Infの(0, 0)。正例（または負例）が無い場合は対応する率がNaNになり、
// UndefinedMetricWarningが発生する。
func ROCCurve(yTrue, yScore *mat.VecDense) (fpr, tpr, thresholds []float64, err error) {
	n, err := validatePair("ROCCurve", yTrue, yScore)
	if err != nil {
		return nil, nil, nil, err
	}
	nPos, err := checkBinary("ROCCurve", yTrue)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := checkFinite("ROCCurve", yScore); err != nil {
		return nil, nil, nil, err
	}
	nNeg := n - nPos
	if nPos == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("ROCCurve", "no positive samples in y_true, true positive rate is NaN", math.NaN()))
	}
	if nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("ROCCurve", "no negative samples in y_true, false positive rate is NaN", math.NaN()))
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = -yScore.AtVec(i) // 降順にするため符号を反転
	}
	order := make([]int, n)
	floats.Argsort(scores, order)

	fpr = []float64{0}
	tpr = []float64{0}
	thresholds = []float64{math.Inf(1)}
	tp, fp := 0.0, 0.0
	for i := 0; i < n; {
		j := i
		for j < n && scores[j] == scores[i] {
			if yTrue.AtVec(order[j]) == 1 {
				tp++
			} else {
				fp++
			}
			j++
		}
		fpr = append(fpr, fp/float64(nNeg))
		tpr = append(tpr, tp/float64(nPos))
		thresholds = append(thresholds, -scores[i])
		i = j
	}
	return fpr, tpr, thresholds, nil
}

// ROCAUCScore は多出力のROC-AUCを計算する
// Y と S は同じ形（n_samples × n_targets）で、S は各ターゲットの正例確率。
// Macro は1要素のスライス（列平均）を、None は列ごとのAUCを返す。
func ROCAUCScore(Y, S mat.Matrix, average Average) ([]float64, error) {
	if Y == nil || S == nil {
		return nil, errors.NewValueError("ROCAUCScore", "nil matrix")
	}
	r, c := Y.Dims()
	rs, cs := S.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError("ROCAUCScore", "empty matrix")
	}
	if r != rs {
		return nil, errors.NewDimensionError("ROCAUCScore", r, rs, 0)
	}
	if c != cs {
		return nil, errors.NewDimensionError("ROCAUCScore", c, cs, 1)
	}
	if average != Macro && average != None {
		return nil, errors.NewValidationError("average", "must be macro or none", string(average))
	}

	perTarget := make([]float64, c)
	for k := 0; k < c; k++ {
		auc, err := AUC(mat.NewVecDense(r, mat.Col(nil, k, Y)), mat.NewVecDense(r, mat.Col(nil, k, S)))
		if err != nil {
			return nil, errors.Wrapf(err, "target %d", k)
		}
		perTarget[k] = auc
	}
	if average == None {
		return perTarget, nil
	}
	return []float64{floats.Sum(perTarget) / float64(c)}, nil
}

// MacroROCAUC はROCAUCScore(Y, S, Macro)のスカラー版
func MacroROCAUC(Y, S mat.Matrix) (float64, error) {
	scores, err := ROCAUCScore(Y, S, Macro)
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// BinaryLogLoss は二値分類の対数損失を計算する
// 確率は[eps, 1-eps]にクリップされる（eps = 1e-15）。
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validatePair("BinaryLogLoss", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if _, err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	// LogLoss = -(1/n) * Σ[y*log(p) + (1-y)*log(1-p)]
	var sum float64
	for i := 0; i < n; i++ {
		p := errors.ClipValue(yPred.AtVec(i), logLossEps, 1-logLossEps)
		if yTrue.AtVec(i) == 1 {
			sum += math.Log(p)
		} else {
			sum += math.Log(1 - p)
		}
	}
	return -sum / float64(n), nil
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validatePair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError は誤分類率（1 - Accuracy）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}
