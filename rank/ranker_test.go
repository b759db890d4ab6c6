package rank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/model"
)

func TestNewRankerFallsBackToForest(t *testing.T) {
	ctx := context.Background()

	r := NewRanker(ctx, nil)
	if r.Name() != "rank.forest" {
		t.Errorf("无远程服务时应使用本地森林，实际 %s", r.Name())
	}

	unreachable := model.NewRemoteRanker("gbdt", "http://127.0.0.1:1", 200*time.Millisecond)
	r = NewRanker(ctx, unreachable)
	if r.Name() != "rank.forest" {
		t.Errorf("远程探测失败时应降级到本地森林，实际 %s", r.Name())
	}
}

func TestNewRankerPrefersRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	remote := model.NewRemoteRanker("gbdt", srv.URL, time.Second)
	r := NewRanker(context.Background(), remote)
	if r.Name() != "rank.gbdt" {
		t.Errorf("远程服务可达时应优先使用远程后端，实际 %s", r.Name())
	}
}

func TestRankNodeOrdersByScore(t *testing.T) {
	catalog := rankCatalog(t)
	b := rankBuilder(t, catalog)
	ctx := context.Background()

	// 相关性与 cuisine_match 强相关的训练集
	pairs := []core.LabeledPair{
		{QueryID: "q1", Query: "japanese sushi", UserID: "u1", ItemID: 1, Relevance: 3},
		{QueryID: "q1", Query: "japanese sushi", UserID: "u1", ItemID: 2, Relevance: 0},
		{QueryID: "q2", Query: "italian pizza", UserID: "u1", ItemID: 2, Relevance: 3},
		{QueryID: "q2", Query: "italian pizza", UserID: "u1", ItemID: 1, Relevance: 0},
	}
	rows, err := b.BuildDataset(ctx, pairs)
	if err != nil {
		t.Fatalf("构建训练集失败: %v", err)
	}

	ranker := NewRankerWith(model.NewForestRanker())
	if err := ranker.FitRows(rows); err != nil {
		t.Fatalf("训练失败: %v", err)
	}

	// 在线链路：理解 -> 特征 -> 排序
	qctx := &core.QueryContext{UserID: "u1", Understood: b.understand("japanese sushi")}
	items := []*core.Item{core.NewItem(2), core.NewItem(1)}
	items[0].Features["lexical_score"] = 0.1
	items[1].Features["lexical_score"] = 0.7

	featureNode := &FeatureNode{Builder: b}
	items, err = featureNode.Process(ctx, qctx, items)
	if err != nil {
		t.Fatalf("特征节点失败: %v", err)
	}

	rankNode := &RankNode{Ranker: ranker}
	items, err = rankNode.Process(ctx, qctx, items)
	if err != nil {
		t.Fatalf("排序节点失败: %v", err)
	}
	if items[0].ID != 1 {
		t.Errorf("japanese 查询应把物品 1 排在首位，实际 %d", items[0].ID)
	}
	if items[0].Score < items[1].Score {
		t.Errorf("分数应降序: %.4f < %.4f", items[0].Score, items[1].Score)
	}
}

func TestFeatureNodeDropsUnknownItems(t *testing.T) {
	b := rankBuilder(t, rankCatalog(t))
	qctx := &core.QueryContext{UserID: "u1", Understood: b.understand("sushi")}

	items := []*core.Item{core.NewItem(1), core.NewItem(999)}
	out, err := (&FeatureNode{Builder: b}).Process(context.Background(), qctx, items)
	if err != nil {
		t.Fatalf("特征节点失败: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Errorf("目录外候选应被丢弃，实际 %+v", out)
	}
}
