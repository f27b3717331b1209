package classifier

// DefaultKeywords returns the built-in keyword table. A keywords_file in the
// main configuration replaces it, or extends it with merge_defaults.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		// 食品
		"超市":   {"食品", "生鲜", "米面"},
		"大型超市": {"食品", "超市", "综合采购"},
		"盒马":   {"食品", "生鲜", "综合生鲜"},
		"叮咚买菜": {"食品", "生鲜", "蔬菜"},
		"朴朴":   {"食品", "生鲜", "综合生鲜"},
		"水果":   {"食品", "生鲜", "水果"},
		"菜场":   {"食品", "生鲜", "蔬菜"},
		"面包":   {"食品", "零食", "烘焙"},
		"零食":   {"食品", "零食", "零食"},
		"便利店":  {"食品", "零食", "便利店"},

		// 餐饮
		"美团外卖": {"餐饮", "外卖", "外卖"},
		"饿了么":  {"餐饮", "外卖", "外卖"},
		"麦当劳":  {"餐饮", "快餐", "西式快餐"},
		"肯德基":  {"餐饮", "快餐", "西式快餐"},
		"瑞幸":   {"餐饮", "饮品", "咖啡"},
		"星巴克":  {"餐饮", "饮品", "咖啡"},
		"咖啡":   {"餐饮", "饮品", "咖啡"},
		"奶茶":   {"餐饮", "饮品", "奶茶"},
		"喜茶":   {"餐饮", "饮品", "奶茶"},
		"餐厅":   {"餐饮", "正餐", "堂食"},
		"火锅":   {"餐饮", "正餐", "火锅"},

		// 交通
		"滴滴":    {"交通", "打车", "网约车"},
		"高德打车":  {"交通", "打车", "网约车"},
		"地铁":    {"交通", "公共交通", "地铁"},
		"公交":    {"交通", "公共交通", "公交"},
		"铁路":    {"交通", "长途", "火车"},
		"12306": {"交通", "长途", "火车"},
		"航空":    {"交通", "长途", "飞机"},
		"加油":    {"交通", "私家车", "加油"},
		"停车":    {"交通", "私家车", "停车"},

		// 日用
		"京东":  {"日用", "网购", "京东"},
		"淘宝":  {"日用", "网购", "淘宝"},
		"拼多多": {"日用", "网购", "拼多多"},
		"纸巾":  {"日用", "家居", "清洁用品"},
		"洗衣":  {"日用", "家居", "洗护"},

		// 宠物
		"猫粮":   {"宠物", "主食", "猫粮"},
		"猫砂":   {"宠物", "用品", "猫砂"},
		"宠物医院": {"宠物", "医疗", "诊疗"},
		"宠物":   {"宠物", "用品", "综合"},

		// 住房
		"电费": {"住房", "水电燃气", "电费"},
		"水费": {"住房", "水电燃气", "水费"},
		"燃气": {"住房", "水电燃气", "燃气"},
		"物业": {"住房", "物业", "物业费"},
		"房租": {"住房", "租金", "房租"},

		// 通讯
		"话费":   {"通讯", "手机", "话费"},
		"宽带":   {"通讯", "网络", "宽带"},
		"中国移动": {"通讯", "手机", "话费"},

		// 医疗
		"药房":  {"医疗", "药品", "药店"},
		"大药房": {"医疗", "药品", "连锁药店"},
		"医院":  {"医疗", "诊疗", "门诊"},

		// 娱乐
		"电影":   {"娱乐", "休闲", "电影"},
		"视频会员": {"娱乐", "会员", "视频"},
		"音乐":   {"娱乐", "会员", "音乐"},
		"游戏":   {"娱乐", "休闲", "游戏"},

		// 服饰
		"优衣库": {"服饰", "衣物", "服装"},
		"鞋":   {"服饰", "衣物", "鞋靴"},

		// 人情
		"红包": {"人情", "往来", "红包"},
		"转账": {"人情", "往来", "转账"},
	}
}
